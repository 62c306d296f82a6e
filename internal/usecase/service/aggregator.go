package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lsdops/slashreport/internal/domain"
	"go.uber.org/zap"
)

var aggregateItemsError = errors.New("aggregate open items error")

// ProjectLister интерфейс эндпоинтов GitLab для проектов группы и их открытых элементов
type ProjectLister interface {
	GroupProjects(ctx context.Context, groupID int64) ([]domain.Project, error)
	OpenItems(ctx context.Context, projectID int64, kind domain.ItemKind) ([]domain.OpenItem, error)
}

// GroupNamer обратный поиск отображаемого имени группы
type GroupNamer interface {
	NameFor(id int64) (string, bool)
}

type Aggregator struct {
	names GroupNamer
	log   *zap.Logger
}

func NewAggregator(names GroupNamer, log *zap.Logger) *Aggregator {
	return &Aggregator{
		names: names,
		log:   log,
	}
}

// Aggregate собирает открытые элементы по каждой группе независимо:
// проекты группы разворачиваются в один список, элементы всех проектов
// склеиваются, каждому приписывается возраст в днях, затем стабильная
// сортировка по возрасту по убыванию. Любая ошибка исходящего вызова
// прерывает всю агрегацию — частичных результатов не бывает.
func (a *Aggregator) Aggregate(ctx context.Context, api ProjectLister, groupIDs []int64, kind domain.ItemKind) (domain.Report, error) {
	report := make(domain.Report, len(groupIDs))

	for _, groupID := range groupIDs {
		projects, err := api.GroupProjects(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", aggregateItemsError, err)
		}

		items := make([]domain.OpenItem, 0)
		for _, project := range projects {
			batch, err := api.OpenItems(ctx, project.Id, kind)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", aggregateItemsError, err)
			}
			items = append(items, batch...)
		}

		now := time.Now().UTC()
		for i := range items {
			items[i].DaysOpen = int(now.Sub(items[i].CreatedAt).Hours() / 24)
		}

		// Стабильная сортировка: при равном возрасте сохраняется порядок выборки
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DaysOpen > items[j].DaysOpen
		})

		// Отсутствие имени в кэше не ошибка, группа попадёт в отчёт без имени
		name, ok := a.names.NameFor(groupID)
		if !ok {
			a.log.Warn("no cached name for group", zap.Int64("group_id", groupID))
		}
		report[name] = items

		a.log.Debug("group aggregated",
			zap.String("group", name),
			zap.Int("projects", len(projects)),
			zap.Int("items", len(items)),
		)
	}

	return report, nil
}
