package board

import (
	"time"

	"github.com/iudanet/garageboard/internal/models"
)

// ActionType is the closed set of transitions the reducer understands.
type ActionType string

const (
	FetchBoardStart   ActionType = "FETCH_BOARD_START"
	FetchBoardSuccess ActionType = "FETCH_BOARD_SUCCESS"
	FetchBoardError   ActionType = "FETCH_BOARD_ERROR"
	FetchStatsStart   ActionType = "FETCH_STATS_START"
	FetchStatsSuccess ActionType = "FETCH_STATS_SUCCESS"
	FetchStatsError   ActionType = "FETCH_STATS_ERROR"
	MoveStart         ActionType = "MOVE_START"
	MoveOptimistic    ActionType = "MOVE_OPTIMISTIC"
	MoveSuccess       ActionType = "MOVE_SUCCESS"
	MoveError         ActionType = "MOVE_ERROR"
	MoveRollback      ActionType = "MOVE_ROLLBACK"
	ClearError        ActionType = "CLEAR_ERROR"
	SetRefreshing     ActionType = "SET_REFRESHING"
)

// Action несет данные для одного перехода состояния.
// Заполняются только поля, относящиеся к Type.
type Action struct {
	At            time.Time
	Err           error
	Stats         *models.BoardStats
	Result        *models.MoveResult
	Update        *OptimisticUpdate
	Type          ActionType
	AppointmentID string
	Appointments  []models.Appointment
	Refreshing    bool
}

func FetchBoardStarted() Action { return Action{Type: FetchBoardStart} }

func FetchBoardSucceeded(cards []models.Appointment, at time.Time) Action {
	return Action{Type: FetchBoardSuccess, Appointments: cards, At: at}
}

func FetchBoardFailed(err error) Action { return Action{Type: FetchBoardError, Err: err} }

func FetchStatsStarted() Action { return Action{Type: FetchStatsStart} }

func FetchStatsSucceeded(stats *models.BoardStats) Action {
	return Action{Type: FetchStatsSuccess, Stats: stats}
}

func FetchStatsFailed(err error) Action { return Action{Type: FetchStatsError, Err: err} }

func MoveStarted(id string) Action { return Action{Type: MoveStart, AppointmentID: id} }

func MoveApplied(u OptimisticUpdate) Action {
	return Action{Type: MoveOptimistic, AppointmentID: u.EntityID, Update: &u}
}

func MoveSucceeded(res models.MoveResult) Action {
	return Action{Type: MoveSuccess, AppointmentID: res.ID, Result: &res}
}

func MoveFailed(id string, err error) Action {
	return Action{Type: MoveError, AppointmentID: id, Err: err}
}

func MoveRolledBack(id string) Action { return Action{Type: MoveRollback, AppointmentID: id} }

func ErrorCleared() Action { return Action{Type: ClearError} }

func RefreshingSet(on bool) Action { return Action{Type: SetRefreshing, Refreshing: on} }
