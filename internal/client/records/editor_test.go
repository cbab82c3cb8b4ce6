package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/client/cache"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache() *cache.Cache {
	return cache.New(time.Minute, nil, testLogger())
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

var (
	originalVehicle = models.Vehicle{ID: "v1", Make: "Toyota", Model: "Corolla", Year: 2015, Version: 1}
	remoteVehicle   = models.Vehicle{ID: "v1", Make: "Honda", Model: "Corolla", Year: 2015, Version: 3}
)

// seededVehicles возвращает редактор и кэш с записью v1 под тегом e1
func seededVehicles(t *testing.T, client API, opts ...Option) (*Editor[models.Vehicle], *cache.Cache) {
	t.Helper()
	c := newTestCache()
	c.Observe(context.Background(), cache.Key(api.ResourceVehicles, "v1"), "e1", mustJSON(t, originalVehicle))
	return NewVehicles(client, c, testLogger(), opts...), c
}

func TestEditor_Load(t *testing.T) {
	calls := 0
	client := &APIMock{
		GetProfileFunc: func(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error) {
			calls++
			if calls == 1 {
				return &api.Record{Data: mustJSON(t, originalVehicle), ETag: "e1"}, nil
			}
			return nil, fmt.Errorf("get vehicles profile request failed: %w", api.ErrNotModified)
		},
	}
	c := newTestCache()
	editor := NewVehicles(client, c, testLogger())
	ctx := context.Background()

	v, err := editor.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, originalVehicle, v)
	assert.Equal(t, "e1", c.Token(ctx, "vehicles/v1"))

	v, err = editor.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, originalVehicle, v)

	profileCalls := client.GetProfileCalls()
	require.Len(t, profileCalls, 2)
	assert.Equal(t, "", profileCalls[0].IfNoneMatch)
	assert.Equal(t, "e1", profileCalls[1].IfNoneMatch)
	assert.Equal(t, api.ResourceVehicles, profileCalls[1].Resource)

	view, ok := editor.View("v1")
	require.True(t, ok)
	assert.Equal(t, originalVehicle, view)
}

func TestEditor_LoadError(t *testing.T) {
	client := &APIMock{
		GetProfileFunc: func(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error) {
			return nil, &api.StatusError{StatusCode: http.StatusNotFound, Message: "vehicle not found"}
		},
	}
	editor := NewVehicles(client, newTestCache(), testLogger())

	_, err := editor.Load(context.Background(), "v9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle not found")

	_, ok := editor.View("v9")
	assert.False(t, ok)
}

func TestEditor_EditSuccess(t *testing.T) {
	var seen models.Vehicle
	var editor *Editor[models.Vehicle]
	client := &APIMock{
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			seen, _ = editor.View(id)
			updated := originalVehicle
			updated.Make = "Ford"
			updated.Version = 2
			return &api.Record{Data: mustJSON(t, updated), ETag: "e2"}, nil
		},
	}
	editor, c := seededVehicles(t, client)
	ctx := context.Background()

	got, err := editor.Edit(ctx, "v1", models.Patch{"make": "Ford"})
	require.NoError(t, err)
	assert.Equal(t, "Ford", got.Make)
	assert.Equal(t, int64(2), got.Version)

	// Патч виден локально до ответа сервера
	assert.Equal(t, "Ford", seen.Make)
	assert.Equal(t, int64(1), seen.Version)

	calls := client.PatchRecordCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "e1", calls[0].IfMatch)
	assert.Equal(t, models.Patch{"make": "Ford"}, calls[0].Patch)

	assert.Equal(t, "e2", c.Token(ctx, "vehicles/v1"))
	view, _ := editor.View("v1")
	assert.Equal(t, got, view)
	assert.False(t, editor.InFlight("v1"))
}

func TestEditor_EditLoadsUnknownRecord(t *testing.T) {
	client := &APIMock{
		GetProfileFunc: func(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error) {
			return &api.Record{Data: mustJSON(t, originalVehicle), ETag: "e1"}, nil
		},
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			return &api.Record{Data: json.RawMessage(`{"year":2016,"version":2}`), ETag: "e2"}, nil
		},
	}
	editor := NewVehicles(client, newTestCache(), testLogger())

	got, err := editor.Edit(context.Background(), "v1", models.Patch{"year": 2016})
	require.NoError(t, err)

	// Частичный ответ сервера сливается с локальным представлением
	assert.Equal(t, "Toyota", got.Make)
	assert.Equal(t, 2016, got.Year)
	assert.Equal(t, int64(2), got.Version)

	require.Len(t, client.PatchRecordCalls(), 1)
	assert.Equal(t, "e1", client.PatchRecordCalls()[0].IfMatch)
}

func TestEditor_EditRereadsWithoutTag(t *testing.T) {
	tests := []struct {
		forget func(ctx context.Context, c *cache.Cache)
		name   string
		ttl    time.Duration
	}{
		{
			name: "cache entry expired",
			ttl:  20 * time.Millisecond,
			forget: func(ctx context.Context, c *cache.Cache) {
				time.Sleep(40 * time.Millisecond)
			},
		},
		{
			name: "cache entry invalidated",
			ttl:  time.Minute,
			forget: func(ctx context.Context, c *cache.Cache) {
				c.Invalidate(ctx, cache.Key(api.ResourceVehicles, "v1"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loads := 0
			client := &APIMock{
				GetProfileFunc: func(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error) {
					loads++
					if loads == 1 {
						return &api.Record{Data: mustJSON(t, originalVehicle), ETag: "e1"}, nil
					}
					// Другой оператор успел изменить запись
					return &api.Record{Data: mustJSON(t, remoteVehicle), ETag: "e3"}, nil
				},
				PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
					return &api.Record{Data: json.RawMessage(`{"year":2016,"version":4}`), ETag: "e4"}, nil
				},
			}
			c := cache.New(tt.ttl, nil, testLogger())
			editor := NewVehicles(client, c, testLogger())
			ctx := context.Background()

			_, err := editor.Load(ctx, "v1")
			require.NoError(t, err)
			tt.forget(ctx, c)

			got, err := editor.Edit(ctx, "v1", models.Patch{"year": 2016})
			require.NoError(t, err)

			require.Len(t, client.GetProfileCalls(), 2)
			assert.Equal(t, "", client.GetProfileCalls()[1].IfNoneMatch)

			require.Len(t, client.PatchRecordCalls(), 1)
			assert.Equal(t, "e3", client.PatchRecordCalls()[0].IfMatch)

			// Правка легла на свежую версию, а не на устаревшее представление
			assert.Equal(t, "Honda", got.Make)
			assert.Equal(t, 2016, got.Year)
			assert.Equal(t, int64(4), got.Version)
		})
	}
}

func TestEditor_EditRefusesWithoutTag(t *testing.T) {
	client := &APIMock{
		GetProfileFunc: func(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error) {
			return &api.Record{Data: mustJSON(t, originalVehicle)}, nil
		},
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			t.Fatal("write must not be sent without If-Match")
			return nil, nil
		},
	}
	editor := NewVehicles(client, newTestCache(), testLogger())

	_, err := editor.Edit(context.Background(), "v1", models.Patch{"year": 2016})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntityTag)
	assert.Empty(t, client.PatchRecordCalls())
	assert.False(t, editor.InFlight("v1"))
}

func TestEditor_RollbackOnFailure(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantKind mutation.Kind
	}{
		{
			name:     "network failure",
			err:      errors.New("connection refused"),
			wantKind: mutation.KindNetwork,
		},
		{
			name:     "validation failure",
			err:      &api.StatusError{StatusCode: http.StatusBadRequest, Message: "year must be positive"},
			wantKind: mutation.KindValidation,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantKind: mutation.KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &APIMock{
				PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
					return nil, tt.err
				},
			}
			editor, c := seededVehicles(t, client)
			ctx := context.Background()

			_, err := editor.Edit(ctx, "v1", models.Patch{"make": "Ford", "year": 2020})
			kind, ok := mutation.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, kind)

			view, _ := editor.View("v1")
			assert.Equal(t, originalVehicle, view)
			assert.Equal(t, "e1", c.Token(ctx, "vehicles/v1"))
			assert.Empty(t, client.GetRecordCalls(), "only stale tags trigger a refetch")
		})
	}
}

func TestEditor_ConflictChoices(t *testing.T) {
	staleTag := func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
		if ifMatch != "" {
			return nil, fmt.Errorf("patch vehicles request failed: %w", api.ErrPreconditionFailed)
		}
		forced := remoteVehicle
		forced.Make = "Ford"
		forced.Version = 4
		return &api.Record{Data: mustJSON(t, forced), ETag: "e-over"}, nil
	}

	tests := []struct {
		check      func(t *testing.T, got models.Vehicle, err error, view models.Vehicle, token string)
		name       string
		choice     conflict.Choice
		wantPatches int
	}{
		{
			name:       "discard adopts server state",
			choice:     conflict.ChoiceDiscard,
			wantPatches: 1,
			check: func(t *testing.T, got models.Vehicle, err error, view models.Vehicle, token string) {
				require.NoError(t, err)
				assert.Equal(t, remoteVehicle, got)
				assert.Equal(t, remoteVehicle, view)
				assert.Equal(t, "e-new", token)
			},
		},
		{
			name:       "overwrite forces the patch",
			choice:     conflict.ChoiceOverwrite,
			wantPatches: 2,
			check: func(t *testing.T, got models.Vehicle, err error, view models.Vehicle, token string) {
				require.NoError(t, err)
				assert.Equal(t, "Ford", got.Make)
				assert.Equal(t, int64(4), got.Version)
				assert.Equal(t, got, view)
				assert.Equal(t, "e-over", token)
			},
		},
		{
			name:       "cancel changes nothing",
			choice:     conflict.ChoiceCancel,
			wantPatches: 1,
			check: func(t *testing.T, got models.Vehicle, err error, view models.Vehicle, token string) {
				assert.True(t, mutation.IsHandled(err))
				var mErr *mutation.Error
				require.ErrorAs(t, err, &mErr)
				require.NotNil(t, mErr.Resolution)
				assert.Equal(t, mutation.ConflictConcurrentEdit, mErr.Resolution.Type)
				assert.Equal(t, int64(3), mErr.Resolution.CurrentVersion)
				assert.Equal(t, int64(1), mErr.Resolution.ProvidedVersion)

				assert.Equal(t, originalVehicle, view)
				assert.Equal(t, "e1", token)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &APIMock{
				PatchRecordFunc: staleTag,
				GetRecordFunc: func(ctx context.Context, resource, id string) (*api.Record, error) {
					return &api.Record{Data: mustJSON(t, remoteVehicle), ETag: "e-new"}, nil
				},
			}
			negotiator := &NegotiatorMock{
				NegotiateFunc: func(ctx context.Context, p conflict.Payload) (conflict.Choice, error) {
					return tt.choice, nil
				},
				NegotiatingFunc: func(key string) bool { return false },
			}
			editor, c := seededVehicles(t, client, WithNegotiator(negotiator))
			ctx := context.Background()

			got, err := editor.Edit(ctx, "v1", models.Patch{"make": "Ford"})
			view, _ := editor.View("v1")
			tt.check(t, got, err, view, c.Token(ctx, "vehicles/v1"))

			patches := client.PatchRecordCalls()
			require.Len(t, patches, tt.wantPatches)
			if tt.wantPatches == 2 {
				assert.Equal(t, "", patches[1].IfMatch)
				assert.Equal(t, patches[0].Patch, patches[1].Patch)
			}

			nego := negotiator.NegotiateCalls()
			require.Len(t, nego, 1)
			p := nego[0].P
			assert.Equal(t, "vehicles/v1", p.Key())
			assert.Equal(t, "Ford", p.Local["make"])
			assert.Equal(t, "Honda", p.Remote["make"])
			require.Len(t, p.Fields, 1)
			assert.Equal(t, conflict.Field{Name: "make", Label: "Make", Local: "Ford", Remote: "Honda"}, p.Fields[0])
			assert.Contains(t, p.Title, "Vehicle")
		})
	}
}

func TestEditor_ConflictRefetchFails(t *testing.T) {
	client := &APIMock{
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			return nil, api.ErrPreconditionFailed
		},
		GetRecordFunc: func(ctx context.Context, resource, id string) (*api.Record, error) {
			return nil, errors.New("connection reset")
		},
	}
	negotiator := &NegotiatorMock{NegotiatingFunc: func(key string) bool { return false }}
	editor, _ := seededVehicles(t, client, WithNegotiator(negotiator))

	_, err := editor.Edit(context.Background(), "v1", models.Patch{"make": "Ford"})
	kind, _ := mutation.KindOf(err)
	assert.Equal(t, mutation.KindNetwork, kind)
	assert.Empty(t, negotiator.NegotiateCalls())

	view, _ := editor.View("v1")
	assert.Equal(t, originalVehicle, view)
}

func TestEditor_NoNegotiatorCancels(t *testing.T) {
	client := &APIMock{
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			return nil, api.ErrPreconditionFailed
		},
		GetRecordFunc: func(ctx context.Context, resource, id string) (*api.Record, error) {
			return &api.Record{Data: mustJSON(t, remoteVehicle), ETag: "e-new"}, nil
		},
	}
	editor, _ := seededVehicles(t, client)

	_, err := editor.Edit(context.Background(), "v1", models.Patch{"make": "Ford"})
	assert.True(t, mutation.IsHandled(err))
	assert.Len(t, client.PatchRecordCalls(), 1)
}

func TestEditor_Guards(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		client := &APIMock{}
		editor, _ := seededVehicles(t, client)

		_, err := editor.Edit(context.Background(), "v1", models.Patch{})
		assert.ErrorIs(t, err, ErrEmptyPatch)
		kind, _ := mutation.KindOf(err)
		assert.Equal(t, mutation.KindValidation, kind)
	})

	t.Run("negotiation open", func(t *testing.T) {
		client := &APIMock{}
		negotiator := &NegotiatorMock{NegotiatingFunc: func(key string) bool { return key == "vehicles/v1" }}
		editor, _ := seededVehicles(t, client, WithNegotiator(negotiator))

		_, err := editor.Edit(context.Background(), "v1", models.Patch{"make": "Ford"})
		assert.ErrorIs(t, err, conflict.ErrNegotiationOpen)
		kind, _ := mutation.KindOf(err)
		assert.Equal(t, mutation.KindMoveInProgress, kind)
		assert.Empty(t, client.PatchRecordCalls())
	})

	t.Run("edit in flight", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		client := &APIMock{
			PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
				close(started)
				<-release
				return &api.Record{Data: mustJSON(t, originalVehicle), ETag: "e2"}, nil
			},
		}
		editor, _ := seededVehicles(t, client)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := editor.Edit(context.Background(), "v1", models.Patch{"make": "Ford"})
			assert.NoError(t, err)
		}()

		<-started
		assert.True(t, editor.InFlight("v1"))
		_, err := editor.Edit(context.Background(), "v1", models.Patch{"model": "Yaris"})
		assert.ErrorIs(t, err, mutation.ErrInProgress)

		close(release)
		wg.Wait()
		assert.Len(t, client.PatchRecordCalls(), 1)
	})
}

func TestEditor_Customers(t *testing.T) {
	original := models.Customer{ID: "c1", Name: "Ann", Phone: "555-0100", Version: 1}
	client := &APIMock{
		PatchRecordFunc: func(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error) {
			assert.Equal(t, api.ResourceCustomers, resource)
			updated := original
			updated.Phone = "555-0199"
			updated.Version = 2
			return &api.Record{Data: mustJSON(t, updated), ETag: "c-e2"}, nil
		},
	}
	c := newTestCache()
	ctx := context.Background()
	c.Observe(ctx, cache.Key(api.ResourceCustomers, "c1"), "c-e1", mustJSON(t, original))
	editor := NewCustomers(client, c, testLogger())

	got, err := editor.Edit(ctx, "c1", models.Patch{"phone": "555-0199"})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)
	assert.Equal(t, "c-e1", client.PatchRecordCalls()[0].IfMatch)
	assert.Equal(t, "c-e2", c.Token(ctx, "customers/c1"))
}

// TestEditor_StaleTagOverwriteOverHTTP проходит весь путь 412 -> GET -> overwrite
// через настоящий HTTP клиент.
func TestEditor_StaleTagOverwriteOverHTTP(t *testing.T) {
	var mu sync.Mutex
	var ifMatch []string

	live := models.Vehicle{ID: "v1", Make: "Toyota", Model: "Camry", Year: 2018, Version: 2}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("ETag", "veh-etag-new")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": live})

		case http.MethodPatch:
			mu.Lock()
			ifMatch = append(ifMatch, r.Header.Get("If-Match"))
			mu.Unlock()

			if r.Header.Get("If-Match") != "" {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
			var patch map[string]any
			_ = json.NewDecoder(r.Body).Decode(&patch)
			forced := live
			forced.Make, _ = patch["make"].(string)
			forced.Version = 3
			w.Header().Set("ETag", "veh-etag-overwrite")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": forced})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	c := newTestCache()
	ctx := context.Background()
	c.Observe(ctx, "vehicles/v1", "veh-etag-original", mustJSON(t, originalVehicle))

	negotiator := conflict.NewNegotiator(conflict.StaticPrompter{Choice: conflict.ChoiceOverwrite}, testLogger(), nil)
	editor := NewVehicles(api.NewClient(srv.URL), c, testLogger(), WithNegotiator(negotiator))

	got, err := editor.Edit(ctx, "v1", models.Patch{"make": "Ford"})
	require.NoError(t, err)

	assert.Equal(t, "Ford", got.Make)
	assert.Equal(t, "Camry", got.Model)
	assert.Equal(t, "veh-etag-overwrite", c.Token(ctx, "vehicles/v1"))

	mu.Lock()
	assert.Equal(t, []string{"veh-etag-original", ""}, ifMatch)
	mu.Unlock()

	session, ok := negotiator.Last("vehicles/v1")
	require.True(t, ok)
	assert.Equal(t, conflict.StateOverwritten, session.State)
	assert.False(t, negotiator.Negotiating("vehicles/v1"))
}
