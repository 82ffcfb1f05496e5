package wallet

import (
	"context"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Account is a snapshot of the wallet connection.
type Account struct {
	Address   ethcommon.Address
	Connected bool
}

// Session holds the connected account and notifies subscribers when it
// changes. A nil gateway is allowed and keeps the session disconnected.
type Session struct {
	gw Gateway

	mu      sync.Mutex
	current Account
	nextID  int
	subs    map[int]chan Account
}

func NewSession(gw Gateway) *Session {
	return &Session{gw: gw, subs: make(map[int]chan Account)}
}

func (s *Session) Gateway() Gateway { return s.gw }

func (s *Session) Current() Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe returns a channel that receives the latest account after every
// change, starting with the current one. Slow readers only see the newest
// value. The returned func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Account, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Account, 1)
	ch <- s.current
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) set(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a == s.current {
		return
	}
	s.current = a
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- a
	}
}

// Refresh reads the already connected account without prompting.
func (s *Session) Refresh(ctx context.Context) (Account, error) {
	if s.gw == nil {
		return Account{}, ErrNoWallet
	}
	addr, ok, err := s.gw.ConnectedAccount(ctx)
	if err != nil {
		return s.Current(), err
	}
	a := Account{Address: addr, Connected: ok}
	s.set(a)
	return a, nil
}

// Connect prompts the wallet for account access.
func (s *Session) Connect(ctx context.Context) (Account, error) {
	if s.gw == nil {
		return Account{}, ErrNoWallet
	}
	addr, err := s.gw.RequestAccountAccess(ctx)
	if err != nil {
		return s.Current(), err
	}
	a := Account{Address: addr, Connected: true}
	s.set(a)
	return a, nil
}
