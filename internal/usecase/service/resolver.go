package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lsdops/slashreport/internal/domain"
	"go.uber.org/zap"
)

var resolveGroupsError = errors.New("resolve groups error")

// GroupSearcher интерфейс поискового эндпоинта GitLab
type GroupSearcher interface {
	SearchGroups(ctx context.Context, name string, skipIDs []int64) ([]domain.Group, error)
}

// GroupResolver маппит имена групп на числовые id через кэш на весь процесс.
// Кэш заполняется лениво, не вытесняется и не истекает; записанный для имени
// id больше никогда не перезаписывается.
type GroupResolver struct {
	mu     sync.RWMutex
	byName map[string]int64
	log    *zap.Logger
}

func NewGroupResolver(log *zap.Logger) *GroupResolver {
	return &GroupResolver{
		byName: make(map[string]int64),
		log:    log,
	}
}

// Resolve возвращает id для запрошенных имён. Если все имена в кэше,
// исходящих вызовов нет. Иначе каждое имя ищется заново с skip_groups[]
// уже известных id; засчитывается только точное совпадение отображаемого
// имени. Имена без точного совпадения молча отбрасываются.
func (r *GroupResolver) Resolve(ctx context.Context, api GroupSearcher, names []string) ([]int64, error) {
	skip := make([]int64, 0, len(names))
	allCached := true
	r.mu.RLock()
	for _, name := range names {
		if id, ok := r.byName[name]; ok {
			skip = append(skip, id)
		} else {
			allCached = false
		}
	}
	r.mu.RUnlock()

	if allCached {
		return r.cachedIDs(names), nil
	}

	for _, name := range names {
		groups, err := api.SearchGroups(ctx, name, skip)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", resolveGroupsError, err)
		}
		for _, group := range groups {
			for _, want := range names {
				if group.Name == want {
					r.store(want, group.Id)
					break
				}
			}
		}
	}

	return r.cachedIDs(names), nil
}

// NameFor обратный поиск имени по id. Отсутствие имени не ошибка:
// вызывающий решает, как отобразить безымянную группу.
func (r *GroupResolver) NameFor(id int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, cached := range r.byName {
		if cached == id {
			return name, true
		}
	}
	return "", false
}

// store кладёт id в кэш, если слот ещё не занят. Первый писатель выигрывает,
// последующие записи для того же имени no-op.
func (r *GroupResolver) store(name string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return
	}
	r.byName[name] = id
	r.log.Debug("group name cached",
		zap.String("name", name),
		zap.Int64("group_id", id),
	)
}

func (r *GroupResolver) cachedIDs(names []string) []int64 {
	ids := make([]int64, 0, len(names))
	seen := make(map[int64]struct{}, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		id, ok := r.byName[name]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
