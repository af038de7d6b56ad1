package zookeeper

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实的 ZooKeeper，例如 ZK_SERVERS=127.0.0.1:2181
func connectForTest(t *testing.T) *Conn {
	t.Helper()
	servers := os.Getenv("ZK_SERVERS")
	if servers == "" {
		t.Skip("ZK_SERVERS not set")
	}
	conn, err := Connect(servers, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

func TestLockerMutualExclusion(t *testing.T) {
	conn := connectForTest(t)
	key := "calendar:" + uuid.NewString()
	first := NewLocker(conn, time.Second)
	second := NewLocker(conn, time.Second)

	release, err := first.Acquire(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = second.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan func(), 1)
	go func() {
		r, err := second.Acquire(context.Background(), key)
		if assert.NoError(t, err) {
			acquired <- r
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second locker acquired while first still holds the lock")
	case <-time.After(100 * time.Millisecond):
	}

	release()
	select {
	case r := <-acquired:
		r()
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never acquired after release")
	}
}

func TestDistributedLockUnlockOnlyRemovesOwnNode(t *testing.T) {
	conn := connectForTest(t)
	resource := nodeName("calendar:" + uuid.NewString())

	holder, err := NewDistributedLock(conn, resource)
	require.NoError(t, err)
	require.NoError(t, holder.Lock(context.Background()))
	require.NoError(t, holder.Unlock())

	next, err := NewDistributedLock(conn, resource)
	require.NoError(t, err)
	require.NoError(t, next.Lock(context.Background()))

	// 旧持有者再次释放不会影响新的持有者
	assert.Error(t, holder.Unlock())
	exists, _, err := conn.Exists(next.lockNode)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, next.Unlock())
}
