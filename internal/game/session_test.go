package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"akaun-master/internal/catalog"
	"akaun-master/internal/scoring"
	"akaun-master/internal/state"
)

// MockScorer keeps submitted records in memory.
type MockScorer struct {
	Records   []scoring.Record
	SubmitErr error
}

func (m *MockScorer) Submit(_ context.Context, r scoring.Record) error {
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	m.Records = append(m.Records, r)
	return nil
}

func (m *MockScorer) History(_ context.Context) ([]scoring.Record, error) {
	return scoring.SortRecords(m.Records), nil
}

type taskQueue struct {
	tasks []state.Task
}

func (q *taskQueue) Schedule(t state.Task) { q.tasks = append(q.tasks, t) }

func (q *taskQueue) pop(kind state.TaskKind) (state.Task, bool) {
	for i, t := range q.tasks {
		if t.Kind == kind {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			return t, true
		}
	}
	return state.Task{}, false
}

var fixedNow = time.Date(2016, 3, 31, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, scorer Scorer) (*Session, *taskQueue) {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default failed: %v", err)
	}
	q := &taskQueue{}
	sess := NewSession(c, scorer, Options{
		Scheduler: q,
		Now:       func() time.Time { return fixedNow },
	})
	return sess, q
}

func playLevel(t *testing.T, sess *Session, levelID string) {
	t.Helper()
	ctx := context.Background()
	if err := sess.EnterName(ctx, "Aina"); err != nil {
		t.Fatalf("EnterName failed: %v", err)
	}
	if err := sess.Play(ctx, levelID); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
}

// solve fills every sub-slot with a fitting card, letting surplus copies
// clear as they come.
func solve(t *testing.T, sess *Session, q *taskQueue) {
	t.Helper()
	ctx := context.Background()
	st := sess.Current.State

	for round := 0; round < 50 && !st.IsComplete(); round++ {
		for _, ref := range st.Level.SubSlots() {
			if _, ok := st.Placements.Get(ref.ID); ok {
				continue
			}
			for _, it := range st.Bank.Items() {
				if !ref.Slot.Accepts(ref.Kind, it.Label, it.DefinitionID, it.Category) {
					continue
				}
				out := sess.HandleDrop(ctx, state.Drop{InstanceID: it.ID, Origin: state.OriginBank, Target: ref.ID})
				if out == state.OutcomeSurplus {
					task, _ := q.pop(state.TaskSurplusClear)
					sess.HandleTask(ctx, task)
				}
				break
			}
		}
	}
	if !st.IsComplete() {
		t.Fatalf("level %s could not be solved", st.Level.ID)
	}
}

func TestSession_EnterName(t *testing.T) {
	sess, _ := newTestSession(t, &MockScorer{})
	ctx := context.Background()

	if err := sess.EnterName(ctx, "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if sess.Screen() != ScreenWelcome {
		t.Errorf("Expected to stay on welcome, got %s", sess.Screen())
	}

	if err := sess.EnterName(ctx, "  Aina "); err != nil {
		t.Fatalf("EnterName failed: %v", err)
	}
	if sess.Screen() != ScreenMenu {
		t.Errorf("Expected menu, got %s", sess.Screen())
	}
	if sess.Player != "Aina" {
		t.Errorf("Expected trimmed name, got %q", sess.Player)
	}
}

func TestSession_PlayUnknownLevel(t *testing.T) {
	sess, _ := newTestSession(t, &MockScorer{})
	ctx := context.Background()
	_ = sess.EnterName(ctx, "Aina")

	if err := sess.Play(ctx, "99"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
	if sess.Screen() != ScreenMenu {
		t.Errorf("Expected to stay on menu, got %s", sess.Screen())
	}
}

func TestSession_PlayStartsFreshLevel(t *testing.T) {
	sess, _ := newTestSession(t, &MockScorer{})
	playLevel(t, sess, "1")

	if sess.Screen() != ScreenGame {
		t.Fatalf("Expected game screen, got %s", sess.Screen())
	}
	st := sess.Current.State
	if st.Bank.Len() != 19 {
		t.Errorf("Expected 19 cards in the bank, got %d", st.Bank.Len())
	}
	if st.Placements.Len() != 0 || st.Mistakes != 0 || sess.Current.Elapsed != 0 {
		t.Errorf("Expected a clean level, got placements=%d mistakes=%d elapsed=%d",
			st.Placements.Len(), st.Mistakes, sess.Current.Elapsed)
	}
}

func TestSession_TicksCarryTheirSession(t *testing.T) {
	sess, _ := newTestSession(t, &MockScorer{})
	playLevel(t, sess, "2")
	id := sess.Current.State.SessionID

	sess.HandleTick(id)
	sess.HandleTick(id)
	sess.HandleTick("stale")

	if sess.Current.Elapsed != 2 {
		t.Errorf("Expected 2 seconds elapsed, got %d", sess.Current.Elapsed)
	}
}

func TestSession_ExitInvalidatesPendingTasks(t *testing.T) {
	sess, q := newTestSession(t, &MockScorer{})
	ctx := context.Background()
	playLevel(t, sess, "1")
	old := sess.Current

	tolak := firstInBank(old.State, "Tolak")
	if out := sess.HandleDrop(ctx, state.Drop{InstanceID: tolak.ID, Origin: state.OriginBank, Target: "l1-jualan"}); out != state.OutcomeRejected {
		t.Fatalf("Expected rejection, got %s", out)
	}

	if err := sess.Exit(ctx); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}
	if sess.Screen() != ScreenMenu {
		t.Errorf("Expected menu, got %s", sess.Screen())
	}
	if !old.State.Cancelled {
		t.Error("Exit should cancel the abandoned attempt")
	}

	if err := sess.Play(ctx, "1"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if sess.Current.State.SessionID == old.State.SessionID {
		t.Error("A new attempt needs a new session id")
	}

	bounce, _ := q.pop(state.TaskBounce)
	sess.HandleTask(ctx, bounce)
	if sess.Current.State.Bank.Len() != 19 {
		t.Errorf("Stale bounce leaked into the new attempt: bank=%d", sess.Current.State.Bank.Len())
	}
	sess.HandleTick(old.State.SessionID)
	if sess.Current.Elapsed != 0 {
		t.Errorf("Stale tick advanced the new timer")
	}
}

func TestSession_Restart(t *testing.T) {
	sess, _ := newTestSession(t, &MockScorer{})
	ctx := context.Background()
	playLevel(t, sess, "4")
	old := sess.Current
	sess.HandleTick(old.State.SessionID)

	if err := sess.Restart(ctx); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	if sess.Screen() != ScreenGame {
		t.Errorf("Expected to stay in game, got %s", sess.Screen())
	}
	if sess.Current == old || !old.State.Cancelled {
		t.Error("Restart should replace and cancel the previous attempt")
	}
	if sess.Current.Elapsed != 0 || sess.Current.State.Level.ID != "4" {
		t.Errorf("Unexpected restarted game: level=%s elapsed=%d", sess.Current.State.Level.ID, sess.Current.Elapsed)
	}
}

func TestSession_CompletionSubmitsRecord(t *testing.T) {
	scorer := &MockScorer{Records: []scoring.Record{
		{Name: "Badrul", LevelID: "2", Score: 3, Time: 200, Timestamp: 1},
	}}
	sess, q := newTestSession(t, scorer)
	ctx := context.Background()
	playLevel(t, sess, "2")
	g := sess.Current
	id := g.State.SessionID

	// One mistake on the way.
	sewa := firstInBank(g.State, "Sewa")
	sess.HandleDrop(ctx, state.Drop{InstanceID: sewa.ID, Origin: state.OriginBank, Target: "l2-h-hasil-main"})
	bounce, _ := q.pop(state.TaskBounce)
	sess.HandleTask(ctx, bounce)

	for i := 0; i < 42; i++ {
		sess.HandleTick(id)
	}
	solve(t, sess, q)

	settle, ok := q.pop(state.TaskSettle)
	if !ok {
		t.Fatal("Expected a settle task once the level is full")
	}
	if sess.Screen() != ScreenGame {
		t.Errorf("Completion must wait for the settle delay")
	}
	sess.HandleTask(ctx, settle)

	if sess.Screen() != ScreenLeaderboard {
		t.Fatalf("Expected leaderboard, got %s", sess.Screen())
	}
	if len(scorer.Records) != 2 {
		t.Fatalf("Expected the record to be submitted, got %d records", len(scorer.Records))
	}
	got := scorer.Records[1]
	want := scoring.Record{Name: "Aina", LevelID: "2", Score: 1, Time: 42, Timestamp: fixedNow.UnixMilli()}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if len(sess.History) != 2 || sess.History[0].Name != "Aina" {
		t.Errorf("Expected refreshed, sorted history, got %+v", sess.History)
	}

	sess.HandleTick(id)
	if g.Elapsed != 42 {
		t.Errorf("Timer should stop on completion, got %d", g.Elapsed)
	}
	sess.HandleTask(ctx, settle)
	if len(scorer.Records) != 2 {
		t.Error("Completion fired twice")
	}
}

func TestSession_SubmitFailureStillShowsLeaderboard(t *testing.T) {
	scorer := &MockScorer{SubmitErr: errors.New("disk full")}
	sess, q := newTestSession(t, scorer)
	ctx := context.Background()
	playLevel(t, sess, "1")

	solve(t, sess, q)
	settle, _ := q.pop(state.TaskSettle)
	sess.HandleTask(ctx, settle)

	if sess.Screen() != ScreenLeaderboard {
		t.Errorf("Expected leaderboard, got %s", sess.Screen())
	}
	if sess.SubmitErr == nil || sess.LastRecord == nil {
		t.Error("Expected the failed record and its error to be kept")
	}
}

func TestSession_MenuLeaderboardRoundTrip(t *testing.T) {
	scorer := &MockScorer{Records: []scoring.Record{{Name: "Badrul", LevelID: "1", Timestamp: 1}}}
	sess, _ := newTestSession(t, scorer)
	ctx := context.Background()
	_ = sess.EnterName(ctx, "Aina")

	if err := sess.ViewScores(ctx); err != nil {
		t.Fatalf("ViewScores failed: %v", err)
	}
	if sess.Screen() != ScreenLeaderboard || len(sess.History) != 1 {
		t.Errorf("Expected leaderboard with history, got %s %+v", sess.Screen(), sess.History)
	}
	if err := sess.Back(ctx); err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if sess.Screen() != ScreenMenu {
		t.Errorf("Expected menu, got %s", sess.Screen())
	}
	if err := sess.Back(ctx); err == nil {
		t.Error("Back from the menu is not a transition")
	}
}

func firstInBank(st *state.State, label string) state.Item {
	for _, it := range st.Bank.Items() {
		if it.Label == label {
			return it
		}
	}
	return state.Item{}
}
