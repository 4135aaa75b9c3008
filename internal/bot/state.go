package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
)

// State holds the bot's cross-run memory: which chats are subscribed, how
// often each wants a push and where long-polling left off. It is the only
// persisted state in the system; the extraction pipeline itself stays
// stateless.
type State struct {
	mu sync.Mutex

	path         string
	subscribed   map[int64]struct{}
	periodSec    map[int64]int
	nextRunUnix  map[int64]int64
	lastUpdateID int64
}

// persistedState is the on-disk JSON shape, kept compatible with the
// original subscription file.
type persistedState struct {
	SubscribedChatIDs []int64          `json:"subscribed_chat_ids"`
	ChatPeriodSec     map[string]int   `json:"chat_period_sec"`
	ChatNextRun       map[string]int64 `json:"chat_next_run"`
	LastUpdateID      *int64           `json:"last_update_id"`
}

// LoadState reads the state file. A missing or unreadable file yields an
// empty state; subscriptions are recoverable by the user, a crash here is
// not worth it.
func LoadState(path string) *State {
	s := &State{
		path:        path,
		subscribed:  make(map[int64]struct{}),
		periodSec:   make(map[int64]int),
		nextRunUnix: make(map[int64]int64),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var p persistedState
	if err := json.Unmarshal(raw, &p); err != nil {
		return s
	}
	for _, id := range p.SubscribedChatIDs {
		s.subscribed[id] = struct{}{}
	}
	for k, v := range p.ChatPeriodSec {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil {
			s.periodSec[id] = v
		}
	}
	for k, v := range p.ChatNextRun {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil {
			s.nextRunUnix[id] = v
		}
	}
	if p.LastUpdateID != nil {
		s.lastUpdateID = *p.LastUpdateID
	}
	return s
}

// Save writes the state atomically via a temp file and rename.
func (s *State) Save() error {
	s.mu.Lock()
	p := persistedState{
		ChatPeriodSec: make(map[string]int, len(s.periodSec)),
		ChatNextRun:   make(map[string]int64, len(s.nextRunUnix)),
	}
	for id := range s.subscribed {
		p.SubscribedChatIDs = append(p.SubscribedChatIDs, id)
	}
	sort.Slice(p.SubscribedChatIDs, func(i, j int) bool { return p.SubscribedChatIDs[i] < p.SubscribedChatIDs[j] })
	for id, v := range s.periodSec {
		p.ChatPeriodSec[strconv.FormatInt(id, 10)] = v
	}
	for id, v := range s.nextRunUnix {
		p.ChatNextRun[strconv.FormatInt(id, 10)] = v
	}
	if s.lastUpdateID != 0 {
		last := s.lastUpdateID
		p.LastUpdateID = &last
	}
	path := s.path
	s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Subscribe registers a chat with the given period and schedules its first
// push immediately.
func (s *State) Subscribe(chatID int64, periodSec int, nowUnix int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed[chatID] = struct{}{}
	s.periodSec[chatID] = periodSec
	s.nextRunUnix[chatID] = nowUnix
}

// Unsubscribe removes a chat entirely.
func (s *State) Unsubscribe(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribed, chatID)
	delete(s.periodSec, chatID)
	delete(s.nextRunUnix, chatID)
}

// Subscribed reports whether the chat receives pushes.
func (s *State) Subscribed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscribed[chatID]
	return ok
}

// SetPeriod updates a subscribed chat's push period.
func (s *State) SetPeriod(chatID int64, periodSec int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribed[chatID]; ok {
		s.periodSec[chatID] = periodSec
	}
}

// DueChats returns the chats whose next push time has passed and advances
// each returned chat's schedule by its period.
func (s *State) DueChats(nowUnix int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []int64
	for id := range s.subscribed {
		if s.nextRunUnix[id] <= nowUnix {
			due = append(due, id)
			s.nextRunUnix[id] = nowUnix + int64(s.periodSec[id])
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	return due
}

// LastUpdateID returns the highest processed update id.
func (s *State) LastUpdateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdateID
}

// SetLastUpdateID records the highest processed update id.
func (s *State) SetLastUpdateID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.lastUpdateID {
		s.lastUpdateID = id
	}
}
