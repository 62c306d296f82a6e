package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lsdops/slashreport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockProjectLister мок эндпоинтов проектов и открытых элементов
type MockProjectLister struct {
	mock.Mock
}

func (m *MockProjectLister) GroupProjects(ctx context.Context, groupID int64) ([]domain.Project, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockProjectLister) OpenItems(ctx context.Context, projectID int64, kind domain.ItemKind) ([]domain.OpenItem, error) {
	args := m.Called(ctx, projectID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OpenItem), args.Error(1)
}

type stubNamer map[int64]string

func (s stubNamer) NameFor(id int64) (string, bool) {
	name, ok := s[id]
	return name, ok
}

// itemAged элемент, созданный days дней назад (плюс час запаса от границы суток)
func itemAged(title string, days int) domain.OpenItem {
	return domain.OpenItem{
		Title:     title,
		WebURL:    "https://git.example.com/" + title,
		CreatedAt: time.Now().UTC().Add(-time.Duration(days)*24*time.Hour - time.Hour),
	}
}

func TestAggregator_Aggregate_OrderedByAgeDesc(t *testing.T) {
	aggregator := NewAggregator(stubNamer{7: "platform"}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{{Id: 31}}, nil)
	api.On("OpenItems", mock.Anything, int64(31), domain.KindIssues).
		Return([]domain.OpenItem{itemAged("five", 5), itemAged("one", 1), itemAged("three", 3)}, nil)

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindIssues)

	assert.NoError(t, err)
	items := report["platform"]
	assert.Len(t, items, 3)
	assert.Equal(t, []string{"five", "three", "one"}, []string{items[0].Title, items[1].Title, items[2].Title})
	assert.Equal(t, []int{5, 3, 1}, []int{items[0].DaysOpen, items[1].DaysOpen, items[2].DaysOpen})
}

func TestAggregator_Aggregate_StableOnEqualAge(t *testing.T) {
	aggregator := NewAggregator(stubNamer{7: "platform"}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{{Id: 31}}, nil)
	api.On("OpenItems", mock.Anything, int64(31), domain.KindIssues).
		Return([]domain.OpenItem{itemAged("first", 2), itemAged("second", 2), itemAged("old", 4)}, nil)

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindIssues)

	assert.NoError(t, err)
	items := report["platform"]
	// Порядок выборки сохраняется для элементов одного возраста
	assert.Equal(t, []string{"old", "first", "second"}, []string{items[0].Title, items[1].Title, items[2].Title})
}

func TestAggregator_Aggregate_FlattensProjects(t *testing.T) {
	aggregator := NewAggregator(stubNamer{7: "platform"}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{{Id: 31}, {Id: 32}}, nil)
	api.On("OpenItems", mock.Anything, int64(31), domain.KindMergeRequests).
		Return([]domain.OpenItem{itemAged("a", 1)}, nil)
	api.On("OpenItems", mock.Anything, int64(32), domain.KindMergeRequests).
		Return([]domain.OpenItem{itemAged("b", 6)}, nil)

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindMergeRequests)

	assert.NoError(t, err)
	items := report["platform"]
	assert.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Title)
	assert.Equal(t, "a", items[1].Title)
}

func TestAggregator_Aggregate_EmptyGroup(t *testing.T) {
	aggregator := NewAggregator(stubNamer{7: "platform"}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{}, nil)

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindIssues)

	assert.NoError(t, err)
	items, ok := report["platform"]
	assert.True(t, ok)
	assert.Empty(t, items)
}

func TestAggregator_Aggregate_MissingNameLenient(t *testing.T) {
	aggregator := NewAggregator(stubNamer{}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{}, nil)

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindIssues)

	assert.NoError(t, err)
	_, ok := report[""]
	assert.True(t, ok)
}

func TestAggregator_Aggregate_ProjectFailureAborts(t *testing.T) {
	aggregator := NewAggregator(stubNamer{7: "platform"}, zap.NewNop())
	api := new(MockProjectLister)

	api.On("GroupProjects", mock.Anything, int64(7)).
		Return([]domain.Project{{Id: 31}, {Id: 32}, {Id: 33}}, nil)
	api.On("OpenItems", mock.Anything, int64(31), domain.KindIssues).
		Return([]domain.OpenItem{itemAged("a", 1)}, nil)
	api.On("OpenItems", mock.Anything, int64(32), domain.KindIssues).
		Return(nil, errors.New("gitlab status 500"))

	report, err := aggregator.Aggregate(context.Background(), api, []int64{7}, domain.KindIssues)

	assert.Error(t, err)
	assert.ErrorIs(t, err, aggregateItemsError)
	assert.Nil(t, report)
	// Третий проект уже не запрашивается
	api.AssertNumberOfCalls(t, "OpenItems", 2)
}
