package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"
)

type fakeCache struct{ cleared int }

func (f *fakeCache) Clear(ctx context.Context) (int, error) {
	f.cleared++
	return 3, nil
}

func newTestRepository(t *testing.T) (*Repository, store.KV) {
	t.Helper()
	kv := store.NewMemoryStore()
	r := NewRepository(kv, "fittrack_", "env-key", nil)
	r.now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	return r, kv
}

func TestProgramsAutoCreateAndProtectLast(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepository(t)

	data, err := r.Programs(ctx)
	if err != nil {
		t.Fatalf("Programs: %v", err)
	}
	if len(data.Items) != 1 || data.Items[0].Name != "Program 1" || data.CurrentID != data.Items[0].ID {
		t.Fatalf("unexpected default programs %+v", data)
	}

	again, _ := r.Programs(ctx)
	if again.CurrentID != data.CurrentID {
		t.Errorf("default program recreated")
	}

	if err := r.DeleteProgram(ctx, data.CurrentID); !errors.Is(err, ErrLastProgram) {
		t.Errorf("delete last program err = %v", err)
	}

	second, err := r.AddProgram(ctx, "")
	if err != nil {
		t.Fatalf("AddProgram: %v", err)
	}
	if second.Name != "Program 2" {
		t.Errorf("name = %q, want Program 2", second.Name)
	}
	cur, _ := r.CurrentProgram(ctx)
	if cur.ID != second.ID {
		t.Errorf("new program not selected")
	}

	if err := r.DeleteProgram(ctx, second.ID); err != nil {
		t.Fatalf("DeleteProgram: %v", err)
	}
	cur, _ = r.CurrentProgram(ctx)
	if cur.ID != data.Items[0].ID {
		t.Errorf("current program = %s, want first", cur.ID)
	}
	if err := r.SwitchProgram(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("switch to missing program err = %v", err)
	}
}

func TestLegacyProgramIsMigrated(t *testing.T) {
	ctx := context.Background()
	r, kv := newTestRepository(t)

	legacy := []training.ProgramExercise{{ID: "x", Exercise: "Squat", TargetSets: 5, TargetReps: 5}}
	if err := store.Save(ctx, kv, "fittrack_program", legacy); err != nil {
		t.Fatal(err)
	}

	cur, err := r.CurrentProgram(ctx)
	if err != nil {
		t.Fatalf("CurrentProgram: %v", err)
	}
	if len(cur.Exercises) != 1 || cur.Exercises[0].Exercise != "Squat" {
		t.Errorf("legacy exercises not migrated: %+v", cur.Exercises)
	}
	if _, err := kv.Get(ctx, "fittrack_program"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("legacy key still present")
	}
}

func TestProgramExercisesAndLogs(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepository(t)

	ex, err := r.AddProgramExercise(ctx, training.ProgramExercise{Exercise: " Bench Press "})
	if err != nil {
		t.Fatalf("AddProgramExercise: %v", err)
	}
	if ex.Exercise != "Bench Press" || ex.TargetSets != 3 || ex.TargetReps != 10 || ex.ID == "" {
		t.Errorf("unexpected exercise %+v", ex)
	}

	if _, err := r.AddProgramLog(ctx, training.ExerciseLogRecord{Exercise: "Bench Press", RPE: 5}); !common.IsValidationError(err) {
		t.Errorf("zero weight err = %v", err)
	}
	log, err := r.AddProgramLog(ctx, training.ExerciseLogRecord{Exercise: "Bench Press", Weight: 60, RPE: 8})
	if err != nil {
		t.Fatalf("AddProgramLog: %v", err)
	}
	if log.Date != "2024-05-10" || log.Sets != 3 || log.Reps != 10 {
		t.Errorf("defaults not applied: %+v", log)
	}

	if got := r.ProgramLogs(ctx); len(got) != 1 {
		t.Fatalf("got %d logs", len(got))
	}
	if err := r.DeleteProgramLog(ctx, log.ID); err != nil {
		t.Fatalf("DeleteProgramLog: %v", err)
	}
	if err := r.DeleteProgramExercise(ctx, ex.ID); err != nil {
		t.Fatalf("DeleteProgramExercise: %v", err)
	}
	if err := r.DeleteProgramExercise(ctx, ex.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestWorkoutsAndPersonalRecords(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepository(t)

	_, pr, err := r.AddWorkout(ctx, Workout{Date: "2024-05-02", Exercise: "Squat", Weight: 80, Sets: 3, Reps: 5})
	if err != nil || !pr {
		t.Fatalf("first workout pr=%v err=%v", pr, err)
	}
	_, pr, _ = r.AddWorkout(ctx, Workout{Date: "2024-05-01", Exercise: "Squat", Weight: 70, Sets: 3, Reps: 5})
	if pr {
		t.Error("lighter workout reported as PR")
	}
	_, pr, _ = r.AddWorkout(ctx, Workout{Date: "2024-05-03", Exercise: "Squat", Weight: 85, Sets: 1, Reps: 3})
	if !pr {
		t.Error("heavier workout not reported as PR")
	}

	list := r.Workouts(ctx)
	if list[0].Date != "2024-05-01" || list[2].Date != "2024-05-03" {
		t.Errorf("workouts not sorted by date: %+v", list)
	}
	if got := r.PersonalRecords(ctx)["Squat"]; got.Weight != 85 || got.Date != "2024-05-03" {
		t.Errorf("pr = %+v", got)
	}
	if _, _, err := r.AddWorkout(ctx, Workout{Exercise: "Squat"}); !common.IsValidationError(err) {
		t.Errorf("incomplete workout err = %v", err)
	}
}

func TestProfileAndAPIKey(t *testing.T) {
	ctx := context.Background()
	r, kv := newTestRepository(t)

	if got := r.Profile(ctx); got != DefaultProfile {
		t.Errorf("default profile = %+v", got)
	}
	if err := kv.Set(ctx, "fittrack_profile", []byte("{bozuk")); err != nil {
		t.Fatal(err)
	}
	if got := r.Profile(ctx); got != DefaultProfile {
		t.Errorf("corrupt profile = %+v, want default", got)
	}

	if got := r.APIKey(ctx); got != "env-key" {
		t.Errorf("fallback key = %q", got)
	}
	if err := r.SetAPIKey(ctx, " user-key "); err != nil {
		t.Fatal(err)
	}
	if got := r.APIKey(ctx); got != "user-key" {
		t.Errorf("stored key = %q", got)
	}
	if err := r.SetAPIKey(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if got := r.APIKey(ctx); got != "env-key" {
		t.Errorf("key after removal = %q", got)
	}
}

func TestExportAndReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	cache := &fakeCache{}
	r := NewRepository(kv, "fittrack_", "", cache)

	if _, err := r.AddMeal(ctx, Meal{Name: "Mercimek Çorbası", Calories: 180, Protein: 9, Carbs: 25, Fat: 5, MealTime: "ogle"}); err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if err := kv.Set(ctx, "other_app_key", []byte("1")); err != nil {
		t.Fatal(err)
	}

	exp := r.Export(ctx)
	if len(exp.Meals) != 1 || len(exp.Workouts) != 0 || exp.Profile != DefaultProfile || exp.ExportedAt.IsZero() {
		t.Errorf("unexpected export %+v", exp)
	}

	if err := r.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(r.Meals(ctx)) != 0 {
		t.Error("meals survived reset")
	}
	if cache.cleared != 1 {
		t.Errorf("cache cleared %d times", cache.cleared)
	}
	if _, err := kv.Get(ctx, "other_app_key"); err != nil {
		t.Errorf("reset removed unrelated key: %v", err)
	}
}
