// Package repositorytest oferece repositórios em memória que respeitam as
// mesmas constraints únicas do Postgres (email, telefone e message_id).
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/phone"
)

type LeadRepository struct {
	mu     sync.Mutex
	leads  []*domain.Lead
	nextID int64
}

func NewLeadRepository(seed ...*domain.Lead) *LeadRepository {
	r := &LeadRepository{}
	for _, lead := range seed {
		r.insert(lead)
	}
	return r
}

// insert deve ser chamado com o lock adquirido ou durante a construção
func (r *LeadRepository) insert(lead *domain.Lead) *domain.Lead {
	r.nextID++
	stored := *lead
	stored.ID = r.nextID
	stored.Email = strings.ToLower(strings.TrimSpace(stored.Email))
	if stored.Status == "" {
		stored.Status = domain.DefaultLeadStatus
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = stored.CreatedAt
	r.leads = append(r.leads, &stored)

	result := stored
	return &result
}

func (r *LeadRepository) find(match func(*domain.Lead) bool) *domain.Lead {
	for _, lead := range r.leads {
		if match(lead) {
			result := *lead
			return &result
		}
	}
	return nil
}

func (r *LeadRepository) All() []domain.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		result = append(result, *lead)
	}
	return result
}

func (r *LeadRepository) GetByID(_ context.Context, id int64) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(l *domain.Lead) bool { return l.ID == id }), nil
}

func (r *LeadRepository) GetByEmail(_ context.Context, email string) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(l *domain.Lead) bool { return l.Email == email }), nil
}

func (r *LeadRepository) GetByPhone(_ context.Context, phoneNumber string) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := phone.Normalize(phoneNumber)
	return r.find(func(l *domain.Lead) bool { return phone.Normalize(l.Phone) == normalized }), nil
}

func (r *LeadRepository) List(_ context.Context, filters domain.LeadFilters) ([]*domain.Lead, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*domain.Lead, 0)
	for i := len(r.leads) - 1; i >= 0; i-- {
		lead := r.leads[i]
		if filters.Status != "" && lead.Status != filters.Status {
			continue
		}
		if filters.Source != "" && lead.Source != filters.Source {
			continue
		}
		if filters.CreatedFrom != nil && lead.CreatedAt.Before(*filters.CreatedFrom) {
			continue
		}
		if filters.CreatedTo != nil && !lead.CreatedAt.Before(*filters.CreatedTo) {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(lead.Name+lead.Email+lead.Phone), strings.ToLower(filters.Search)) {
			continue
		}
		copied := *lead
		matched = append(matched, &copied)
	}

	total := int64(len(matched))
	start := int(filters.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filters.Limit > 0 && start+int(filters.Limit) < end {
		end = start + int(filters.Limit)
	}

	return matched[start:end], total, nil
}

func (r *LeadRepository) FindOrCreateByPhone(_ context.Context, lead *domain.Lead) (*domain.Lead, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := phone.Normalize(lead.Phone)
	if existing := r.find(func(l *domain.Lead) bool { return phone.Normalize(l.Phone) == normalized }); existing != nil {
		return existing, false, nil
	}

	// ON CONFLICT (email) DO NOTHING seguido da leitura do dono do email
	if owner := r.find(func(l *domain.Lead) bool { return l.Email == strings.ToLower(lead.Email) }); owner != nil {
		return owner, false, nil
	}

	return r.insert(lead), true, nil
}

func (r *LeadRepository) UpsertByEmail(_ context.Context, lead *domain.Lead, overwrite bool) (*domain.Lead, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(lead.Email))
	for _, existing := range r.leads {
		if existing.Email != email {
			continue
		}
		if overwrite {
			existing.Name = lead.Name
			existing.Phone = lead.Phone
			existing.Source = lead.Source
			existing.CreatedAt = lead.CreatedAt
			existing.UpdatedAt = time.Now()
		}
		result := *existing
		return &result, false, nil
	}

	return r.insert(lead), true, nil
}

func (r *LeadRepository) Update(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.leads {
		if existing.ID == lead.ID {
			existing.Name = lead.Name
			existing.Phone = lead.Phone
			existing.Source = lead.Source
			existing.Status = lead.Status
			existing.MessageSent = lead.MessageSent
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.NewNotFoundError("lead não encontrado")
}

func (r *LeadRepository) MarkMessageSent(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.leads {
		if existing.ID == id {
			existing.MessageSent = true
			return nil
		}
	}
	return domain.NewNotFoundError("lead não encontrado")
}

func (r *LeadRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.leads {
		if existing.ID == id {
			r.leads = append(r.leads[:i], r.leads[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("lead não encontrado")
}

func (r *LeadRepository) ReadStats(_ context.Context, windows domain.AnalyticsWindows) (*domain.LeadStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &domain.LeadStats{Total: int64(len(r.leads))}
	if stats.Total == 0 {
		return stats, nil
	}

	counts := make(map[string]int64)
	for _, lead := range r.leads {
		created := lead.CreatedAt
		if !created.Before(windows.TodayStart) && !created.After(windows.TodayEnd) {
			stats.Today++
		}
		if !created.Before(windows.YesterdayStart) && !created.After(windows.YesterdayEnd) {
			stats.Yesterday++
		}
		if !created.Before(windows.WeekStart) {
			stats.Week++
		}
		if !created.Before(windows.MonthStart) {
			stats.Month++
		}

		source := strings.TrimSpace(lead.Source)
		if source == "" {
			source = domain.UnknownSource
		}
		counts[source]++
	}

	for source, count := range counts {
		stats.Sources = append(stats.Sources, domain.SourceCount{Source: source, Count: count})
	}
	sort.Slice(stats.Sources, func(i, j int) bool {
		return stats.Sources[i].Count > stats.Sources[j].Count
	})

	return stats, nil
}

type MessageRepository struct {
	mu       sync.Mutex
	messages []*domain.Message
	nextID   int64

	// FailInsertFor força erro na inserção dos message_ids informados
	FailInsertFor map[string]error
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{FailInsertFor: map[string]error{}}
}

func (r *MessageRepository) All() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Message, 0, len(r.messages))
	for _, m := range r.messages {
		result = append(result, *m)
	}
	return result
}

func (r *MessageRepository) exists(messageID string) bool {
	for _, m := range r.messages {
		if m.MessageID == messageID {
			return true
		}
	}
	return false
}

func (r *MessageRepository) store(message *domain.Message) {
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	stored := *message
	r.messages = append(r.messages, &stored)
}

func (r *MessageRepository) ExistsByMessageID(_ context.Context, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exists(messageID), nil
}

func (r *MessageRepository) InsertIfAbsent(_ context.Context, message *domain.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailInsertFor[message.MessageID]; ok {
		return false, err
	}
	if r.exists(message.MessageID) {
		return false, nil
	}

	r.store(message)
	return true, nil
}

func (r *MessageRepository) Insert(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailInsertFor[message.MessageID]; ok {
		return err
	}
	if r.exists(message.MessageID) {
		return fmt.Errorf("%w: %w: %s", domain.ErrStore, domain.ErrDuplicateMessage, message.MessageID)
	}

	r.store(message)
	return nil
}

func (r *MessageRepository) ListByLead(_ context.Context, leadID int64, limit uint64) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Message, 0)
	for _, m := range r.messages {
		if m.LeadID != leadID {
			continue
		}
		copied := *m
		result = append(result, &copied)
		if limit > 0 && uint64(len(result)) == limit {
			break
		}
	}
	return result, nil
}
