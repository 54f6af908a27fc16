package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/gabelluardo/grammY/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(context.Context, string, *domain.Session) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(context.Context, string) error   { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockEntriesAreCollected(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, key, domain.NewSession())
		_ = mgr.Delete(ctx, key)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("%d lock entries remain after all holders released", n)
	}
}
