package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/exstem-rotation/internal/model"
)

type fakeAssessmentStore struct {
	mu    sync.Mutex
	tests map[uuid.UUID]*model.AssessmentTest
	gets  int
}

func newFakeAssessmentStore() *fakeAssessmentStore {
	return &fakeAssessmentStore{tests: map[uuid.UUID]*model.AssessmentTest{}}
}

func (f *fakeAssessmentStore) Create(_ context.Context, t *model.AssessmentTest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	cp := *t
	f.tests[t.ID] = &cp
	return nil
}

func (f *fakeAssessmentStore) GetByID(_ context.Context, id uuid.UUID) (*model.AssessmentTest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	t, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

type fakeQuestionStore struct {
	mu    sync.Mutex
	banks map[uuid.UUID][]model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{banks: map[uuid.UUID][]model.Question{}}
}

func (f *fakeQuestionStore) ListByTest(_ context.Context, testID uuid.UUID) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Question(nil), f.banks[testID]...), nil
}

func (f *fakeQuestionStore) ReplaceForTest(_ context.Context, testID uuid.UUID, qs []model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banks[testID] = append([]model.Question(nil), qs...)
	return nil
}

type fakePayloadCache struct {
	mu       sync.Mutex
	payloads map[uuid.UUID][]byte
	failGet  bool
}

func newFakePayloadCache() *fakePayloadCache {
	return &fakePayloadCache{payloads: map[uuid.UUID][]byte{}}
}

func (f *fakePayloadCache) Get(_ context.Context, id uuid.UUID) (*model.TestPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errors.New("redis down")
	}
	raw, ok := f.payloads[id]
	if !ok {
		return nil, nil
	}
	var p model.TestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakePayloadCache) Set(_ context.Context, p *model.TestPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	f.payloads[p.Test.ID] = raw
	return nil
}

func (f *fakePayloadCache) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.payloads, id)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	records []*model.SelectionRecord
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, rec *model.SelectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}
