// Package workflow sequences job statuses.
//
// A tenant's statuses form a pipeline ordered by their display order. A status
// may override its neighbours with explicit next/prev pointers:
//
//	Backlog(0) ──► In progress(1) ──► Review(2) ──► Done(3, final)
//	                     ▲                 │
//	                     └── prev pointer ─┘
//
// Final statuses have no next status but may be reverted.
package workflow

import (
	"fmt"
	"sort"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
)

// Pipeline is an immutable, ordered view over a tenant's statuses
type Pipeline struct {
	statuses []model.JobStatus
	index    map[string]int
}

// NewPipeline sorts a copy of statuses by order, then name
func NewPipeline(statuses []model.JobStatus) *Pipeline {
	sorted := make([]model.JobStatus, len(statuses))
	copy(sorted, statuses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].Name < sorted[j].Name
	})

	index := make(map[string]int, len(sorted))
	for i, s := range sorted {
		index[s.ID] = i
	}

	return &Pipeline{statuses: sorted, index: index}
}

// Statuses returns the statuses in pipeline order
func (p *Pipeline) Statuses() []model.JobStatus {
	out := make([]model.JobStatus, len(p.statuses))
	copy(out, p.statuses)
	return out
}

// Get looks a status up by id
func (p *Pipeline) Get(id string) (model.JobStatus, bool) {
	i, ok := p.index[id]
	if !ok {
		return model.JobStatus{}, false
	}
	return p.statuses[i], true
}

// Initial returns the status new jobs start in
func (p *Pipeline) Initial() (model.JobStatus, error) {
	if len(p.statuses) == 0 {
		return model.JobStatus{}, domain.NewValidationError("status_id", "no job statuses are configured")
	}
	return p.statuses[0], nil
}

// Next returns the status following current
func (p *Pipeline) Next(currentID string) (model.JobStatus, error) {
	current, ok := p.Get(currentID)
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: status %s", domain.ErrNotFound, currentID)
	}

	if current.IsFinal {
		return model.JobStatus{}, fmt.Errorf("%w: %s is a final status", domain.ErrInvalidTransition, current.Name)
	}

	if current.NextStatusID != nil {
		return p.pointer(current, *current.NextStatusID)
	}

	i := p.index[currentID]
	if i+1 >= len(p.statuses) {
		return model.JobStatus{}, fmt.Errorf("%w: %s is the last status", domain.ErrInvalidTransition, current.Name)
	}
	return p.statuses[i+1], nil
}

// Prev returns the status preceding current
func (p *Pipeline) Prev(currentID string) (model.JobStatus, error) {
	current, ok := p.Get(currentID)
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: status %s", domain.ErrNotFound, currentID)
	}

	if current.PrevStatusID != nil {
		return p.pointer(current, *current.PrevStatusID)
	}

	i := p.index[currentID]
	if i == 0 {
		return model.JobStatus{}, fmt.Errorf("%w: %s is the first status", domain.ErrInvalidTransition, current.Name)
	}
	return p.statuses[i-1], nil
}

func (p *Pipeline) pointer(from model.JobStatus, targetID string) (model.JobStatus, error) {
	target, ok := p.Get(targetID)
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: %s points to unknown status %s", domain.ErrInvalidTransition, from.Name, targetID)
	}
	return target, nil
}

// CanTransition checks a move from one status to another. Without force only
// the immediate neighbours are reachable.
func (p *Pipeline) CanTransition(fromID, toID string, force bool) error {
	if _, ok := p.Get(toID); !ok {
		return domain.NewValidationError("status_id", "unknown status %s", toID)
	}
	if fromID == toID {
		return fmt.Errorf("%w: job is already in this status", domain.ErrInvalidTransition)
	}
	if force {
		return nil
	}

	if next, err := p.Next(fromID); err == nil && next.ID == toID {
		return nil
	}
	if prev, err := p.Prev(fromID); err == nil && prev.ID == toID {
		return nil
	}

	from, _ := p.Get(fromID)
	to, _ := p.Get(toID)
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from.Name, to.Name)
}

// Validate rejects duplicate orders, dangling or self pointers, and cycles
// along explicit next pointers
func (p *Pipeline) Validate() error {
	orders := make(map[int]string, len(p.statuses))
	for _, s := range p.statuses {
		if other, dup := orders[s.Order]; dup {
			return domain.NewValidationError("order", "order %d is used by both %s and %s", s.Order, other, s.Name)
		}
		orders[s.Order] = s.Name

		for field, ptr := range map[string]*string{"next_status_id": s.NextStatusID, "prev_status_id": s.PrevStatusID} {
			if ptr == nil {
				continue
			}
			if *ptr == s.ID {
				return domain.NewValidationError(field, "%s cannot point to itself", s.Name)
			}
			if _, ok := p.index[*ptr]; !ok {
				return domain.NewValidationError(field, "%s points to unknown status %s", s.Name, *ptr)
			}
		}
	}

	for _, start := range p.statuses {
		seen := map[string]bool{start.ID: true}
		cur := start
		for cur.NextStatusID != nil {
			next, _ := p.Get(*cur.NextStatusID)
			if seen[next.ID] {
				return domain.NewValidationError("next_status_id", "next pointers form a cycle through %s", next.Name)
			}
			seen[next.ID] = true
			cur = next
		}
	}

	return nil
}
