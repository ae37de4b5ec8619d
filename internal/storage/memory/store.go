package memory

import (
	"context"
	"sort"
	"sync"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// Store 使用内存保存全部业务数据，主要用于开发验证与测试。
//
// 所有读写都在同一把锁下完成，因此计数重算与用量读改写天然是原子的。
type Store struct {
	mu            sync.RWMutex
	staff         map[string]*domain.Staff
	clients       map[string]*domain.Client
	subscriptions map[string]*domain.Subscription
	templates     map[string]*domain.PlanTemplate
	locations     map[string]*domain.Location
	planCards     map[string]*domain.PlanCard
	bySubID       map[string]string // subscriptionID -> planCardID
	recipients    map[string]*domain.Recipient
	agents        map[string]*domain.PickupAgent
	mail          map[string]*domain.MailItem
	tasks         map[string]*domain.Task
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		staff:         make(map[string]*domain.Staff),
		clients:       make(map[string]*domain.Client),
		subscriptions: make(map[string]*domain.Subscription),
		templates:     make(map[string]*domain.PlanTemplate),
		locations:     make(map[string]*domain.Location),
		planCards:     make(map[string]*domain.PlanCard),
		bySubID:       make(map[string]string),
		recipients:    make(map[string]*domain.Recipient),
		agents:        make(map[string]*domain.PickupAgent),
		mail:          make(map[string]*domain.MailItem),
		tasks:         make(map[string]*domain.Task),
	}
}

// Close 内存存储无需释放资源。
func (s *Store) Close() error { return nil }

// Health 内存存储始终可用。
func (s *Store) Health() error { return nil }

// ========== 外部维护数据的写入（注册、计费、目录同步） ==========

// PutClient 写入客户记录。
func (s *Store) PutClient(client domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = &client
}

// PutSubscription 写入订阅记录。
func (s *Store) PutSubscription(sub domain.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.ID] = &sub
}

// PutPlanTemplate 写入套餐目录条目。
func (s *Store) PutPlanTemplate(tpl domain.PlanTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ProductID] = &tpl
}

// PutLocation 写入门店记录。
func (s *Store) PutLocation(loc domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.LocationID] = &loc
}

// ========== Staff Repository ==========

// GetActiveStaff 返回有效的工作人员。
func (s *Store) GetActiveStaff(_ context.Context, staffID string) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staff, ok := s.staff[staffID]
	if !ok || !staff.Active {
		return nil, storage.ErrNotFound
	}
	out := *staff
	return &out, nil
}

// SaveStaff 保存工作人员。
func (s *Store) SaveStaff(_ context.Context, staff *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *staff
	s.staff[staff.StaffID] = &copied
	return nil
}

// ========== Client Repository ==========

// GetClient 根据 ID 获取客户。
func (s *Store) GetClient(_ context.Context, clientID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *client
	return &out, nil
}

// GetSubscription 根据 ID 获取订阅。
func (s *Store) GetSubscription(_ context.Context, subscriptionID string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *sub
	return &out, nil
}

// ListSubscriptionsByClient 按创建时间倒序返回客户的订阅。
func (s *Store) ListSubscriptionsByClient(_ context.Context, clientID string) ([]domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]domain.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.ClientID == clientID {
			subs = append(subs, *sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

// ========== Catalog Repository ==========

// GetPlanTemplate 根据产品 ID 获取套餐模板。
func (s *Store) GetPlanTemplate(_ context.Context, productID string) (*domain.PlanTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[productID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *tpl
	return &out, nil
}

// ListActiveLocations 返回所有启用的门店，按 ID 排序。
func (s *Store) ListActiveLocations(_ context.Context) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	locs := make([]domain.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		if loc.Active {
			locs = append(locs, *loc)
		}
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].LocationID < locs[j].LocationID })
	return locs, nil
}
