package board

import "github.com/iudanet/garageboard/internal/models"

// Reduce returns the state that results from applying a to s.
// It never mutates s and performs no side effects.
func Reduce(s State, a Action) State {
	next := s.Clone()

	switch a.Type {
	case FetchBoardStart:
		next.Loading = true
		next.Error = ""

	case FetchBoardSuccess:
		next.Loading = false
		next.Error = ""
		next.LastUpdated = a.At
		next.Appointments = append([]models.Appointment(nil), a.Appointments...)
		// Свежие данные сервера не должны визуально откатывать перемещения в полете.
		// Откат после обновления возвращает карточку туда, где ее видит сервер.
		for i, u := range next.OptimisticUpdates {
			if card, ok := findCard(next.Appointments, u.EntityID); ok {
				next.OptimisticUpdates[i].OriginalState = card.Placement()
			}
			next.Appointments = applyOptimisticUpdate(next.Appointments, next.OptimisticUpdates[i])
		}

	case FetchBoardError:
		next.Loading = false
		next.Error = errMessage(a.Err)

	case FetchStatsStart:
		next.StatsLoading = true
		next.StatsError = ""

	case FetchStatsSuccess:
		next.StatsLoading = false
		next.StatsError = ""
		next.Stats = a.Stats.Clone()

	case FetchStatsError:
		next.StatsLoading = false
		next.StatsError = errMessage(a.Err)

	case MoveStart:
		if !next.IsMoving(a.AppointmentID) {
			next.Moving = append(next.Moving, a.AppointmentID)
		}

	case MoveOptimistic:
		if a.Update == nil {
			return next
		}
		next.OptimisticUpdates = append(removeUpdate(next.OptimisticUpdates, a.Update.EntityID), *a.Update)
		next.Appointments = applyOptimisticUpdate(next.Appointments, *a.Update)

	case MoveSuccess:
		if a.Result == nil {
			return next
		}
		next.Appointments = confirmMove(next.Appointments, *a.Result)
		next.OptimisticUpdates = removeUpdate(next.OptimisticUpdates, a.Result.ID)
		next.Moving = removeID(next.Moving, a.Result.ID)

	case MoveError:
		next.Error = errMessage(a.Err)
		next.Moving = removeID(next.Moving, a.AppointmentID)

	case MoveRollback:
		if u, ok := next.PendingUpdate(a.AppointmentID); ok {
			next.Appointments = rollbackOptimisticUpdate(next.Appointments, u)
		}
		next.OptimisticUpdates = removeUpdate(next.OptimisticUpdates, a.AppointmentID)
		next.Moving = removeID(next.Moving, a.AppointmentID)

	case ClearError:
		next.Error = ""
		next.StatsError = ""

	case SetRefreshing:
		next.Refreshing = a.Refreshing
	}

	return next
}

// applyOptimisticUpdate merges PendingState into the targeted card.
// A missing card is not an error: it may have been removed by a refresh.
func applyOptimisticUpdate(cards []models.Appointment, u OptimisticUpdate) []models.Appointment {
	for i := range cards {
		if cards[i].ID == u.EntityID {
			cards[i].Place(u.PendingState)
			break
		}
	}
	return cards
}

func findCard(cards []models.Appointment, id string) (models.Appointment, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return models.Appointment{}, false
}

// rollbackOptimisticUpdate restores OriginalState; no-op when the card is gone.
func rollbackOptimisticUpdate(cards []models.Appointment, u OptimisticUpdate) []models.Appointment {
	for i := range cards {
		if cards[i].ID == u.EntityID {
			cards[i].Place(u.OriginalState)
			break
		}
	}
	return cards
}

// confirmMove replaces version, status and position with the server's values
// regardless of what the optimistic update predicted.
func confirmMove(cards []models.Appointment, res models.MoveResult) []models.Appointment {
	for i := range cards {
		if cards[i].ID == res.ID {
			cards[i].Version = res.Version
			cards[i].Status = res.Status
			cards[i].Position = res.Position
			if !res.UpdatedAt.IsZero() {
				cards[i].UpdatedAt = res.UpdatedAt
			}
			break
		}
	}
	return cards
}

func removeUpdate(updates []OptimisticUpdate, id string) []OptimisticUpdate {
	out := updates[:0]
	for _, u := range updates {
		if u.EntityID != id {
			out = append(out, u)
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
