package records

import (
	"context"
	"fmt"
	"strings"

	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"
)

// 計畫動作未指定目標時的預設值
const (
	DefaultTargetSets = 3
	DefaultTargetReps = 10
)

// ErrLastProgram 至少要保留一個計畫
var ErrLastProgram = common.NewValidationError("son program silinemez")

// Programs 回傳所有計畫；第一次讀取時自動建立 "Program 1"，並搬移舊版單一計畫資料
func (r *Repository) Programs(ctx context.Context) (Programs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.programs(ctx)
}

func (r *Repository) programs(ctx context.Context) (Programs, error) {
	data := store.Load(ctx, r.kv, r.key(keyPrograms), Programs{})
	if len(data.Items) > 0 {
		return data, nil
	}

	legacy := store.Load(ctx, r.kv, r.key(keyLegacyProgram), []training.ProgramExercise{})
	id := common.GenerateUUID()
	data = Programs{
		CurrentID: id,
		Items:     []Program{{ID: id, Name: "Program 1", Exercises: legacy}},
	}
	if err := store.Save(ctx, r.kv, r.key(keyPrograms), data); err != nil {
		return Programs{}, err
	}
	if len(legacy) > 0 {
		if err := r.kv.Delete(ctx, r.key(keyLegacyProgram)); err != nil {
			return Programs{}, err
		}
	}
	return data, nil
}

// CurrentProgram 回傳目前選取的計畫
func (r *Repository) CurrentProgram(ctx context.Context) (Program, error) {
	data, err := r.Programs(ctx)
	if err != nil {
		return Program{}, err
	}
	return data.Current(), nil
}

// AddProgram 新增計畫並設為目前計畫
func (r *Repository) AddProgram(ctx context.Context, name string) (Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.programs(ctx)
	if err != nil {
		return Program{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Program %d", len(data.Items)+1)
	}
	p := Program{ID: common.GenerateUUID(), Name: name, Exercises: []training.ProgramExercise{}}
	data.Items = append(data.Items, p)
	data.CurrentID = p.ID

	if err := store.Save(ctx, r.kv, r.key(keyPrograms), data); err != nil {
		return Program{}, err
	}
	return p, nil
}

// DeleteProgram 刪除計畫；刪除目前計畫時改選第一個
func (r *Repository) DeleteProgram(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.programs(ctx)
	if err != nil {
		return err
	}
	i := data.index(id)
	if i == -1 {
		return store.ErrNotFound
	}
	if len(data.Items) <= 1 {
		return ErrLastProgram
	}

	data.Items = append(data.Items[:i], data.Items[i+1:]...)
	if data.CurrentID == id {
		data.CurrentID = data.Items[0].ID
	}
	return store.Save(ctx, r.kv, r.key(keyPrograms), data)
}

// SwitchProgram 切換目前計畫
func (r *Repository) SwitchProgram(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.programs(ctx)
	if err != nil {
		return err
	}
	if data.index(id) == -1 {
		return store.ErrNotFound
	}
	data.CurrentID = id
	return store.Save(ctx, r.kv, r.key(keyPrograms), data)
}

// AddProgramExercise 在目前計畫加入動作
func (r *Repository) AddProgramExercise(ctx context.Context, ex training.ProgramExercise) (training.ProgramExercise, error) {
	ex.Exercise = strings.TrimSpace(ex.Exercise)
	if ex.Exercise == "" {
		return training.ProgramExercise{}, common.NewValidationError("hareket adı boş olamaz")
	}
	if ex.TargetSets <= 0 {
		ex.TargetSets = DefaultTargetSets
	}
	if ex.TargetReps <= 0 {
		ex.TargetReps = DefaultTargetReps
	}
	if ex.ID == "" {
		ex.ID = common.GenerateUUID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.programs(ctx)
	if err != nil {
		return training.ProgramExercise{}, err
	}
	i := data.index(data.Current().ID)
	data.Items[i].Exercises = append(data.Items[i].Exercises, ex)

	if err := store.Save(ctx, r.kv, r.key(keyPrograms), data); err != nil {
		return training.ProgramExercise{}, err
	}
	return ex, nil
}

// DeleteProgramExercise 從目前計畫移除動作
func (r *Repository) DeleteProgramExercise(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.programs(ctx)
	if err != nil {
		return err
	}
	i := data.index(data.Current().ID)
	kept, removed := removeByID(data.Items[i].Exercises, id, func(e training.ProgramExercise) string { return e.ID })
	if !removed {
		return store.ErrNotFound
	}
	data.Items[i].Exercises = kept
	return store.Save(ctx, r.kv, r.key(keyPrograms), data)
}

// ProgramLogs 回傳所有計畫訓練記錄（寫入順序）
func (r *Repository) ProgramLogs(ctx context.Context) []training.ExerciseLogRecord {
	return r.loadProgramLogs(ctx)
}

// AddProgramLog 新增計畫訓練記錄
func (r *Repository) AddProgramLog(ctx context.Context, log training.ExerciseLogRecord) (training.ExerciseLogRecord, error) {
	log.Exercise = strings.TrimSpace(log.Exercise)
	if log.Exercise == "" {
		return training.ExerciseLogRecord{}, common.NewValidationError("Lütfen hareket seçin")
	}
	if log.Weight <= 0 {
		return training.ExerciseLogRecord{}, common.NewValidationError("Lütfen ağırlık girin")
	}
	if log.RPE < 1 || log.RPE > 10 {
		return training.ExerciseLogRecord{}, common.NewValidationError("RPE 1 ile 10 arasında olmalı")
	}
	if log.Sets <= 0 {
		log.Sets = DefaultTargetSets
	}
	if log.Reps <= 0 {
		log.Reps = DefaultTargetReps
	}
	if log.ID == "" {
		log.ID = common.GenerateUUID()
	}
	if log.Date == "" {
		log.Date = r.today()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.loadProgramLogs(ctx), log)
	if err := store.Save(ctx, r.kv, r.key(keyProgramLogs), list); err != nil {
		return training.ExerciseLogRecord{}, err
	}
	return log, nil
}

// DeleteProgramLog 刪除計畫訓練記錄
func (r *Repository) DeleteProgramLog(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept, removed := removeByID(r.loadProgramLogs(ctx), id, func(l training.ExerciseLogRecord) string { return l.ID })
	if !removed {
		return store.ErrNotFound
	}
	return store.Save(ctx, r.kv, r.key(keyProgramLogs), kept)
}
