package faucet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getoutreach/faucet"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gotest.tools/v3/assert"
)

// stubTx records transaction outcomes without a database
type stubTx struct {
	mu          sync.Mutex
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

var _ pgx.Tx = (*stubTx)(nil)

func (tx *stubTx) Begin(context.Context) (pgx.Tx, error) { return tx, nil }

func (tx *stubTx) Commit(context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.committed = true
	return tx.commitErr
}

func (tx *stubTx) Rollback(context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.rolledBack = true
	return tx.rollbackErr
}

func (tx *stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (tx *stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (tx *stubTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (tx *stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (tx *stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (tx *stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (tx *stubTx) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (tx *stubTx) Conn() *pgx.Conn { return nil }

func managerOverStub(t *testing.T) (*faucet.Manager, *stubPool) {
	t.Helper()
	connector := succeedingConnector()
	boot := newStubBootstrapper(connector)
	conn := openConnection(t, boot, "billing")
	return conn.Manager(), connector.pool(0)
}

func TestManagerExecReportsRowsAffected(t *testing.T) {
	m, pool := managerOverStub(t)
	pool.execTag = pgconn.NewCommandTag("UPDATE 3")

	affected, err := m.Exec(context.Background(), "UPDATE accounts SET active = false")
	assert.NilError(t, err)
	assert.Equal(t, affected, int64(3))
	assert.Equal(t, pool.sql(), "UPDATE accounts SET active = false")
}

func TestManagerExecError(t *testing.T) {
	boom := errors.New("syntax error")
	m, pool := managerOverStub(t)
	pool.execErr = boom

	_, err := m.Exec(context.Background(), "UPDATE accounts")
	assert.Assert(t, errors.Is(err, boom))
	assert.ErrorContains(t, err, `exec on "billing"`)
}

func TestManagerInTxCommits(t *testing.T) {
	m, pool := managerOverStub(t)
	tx := &stubTx{}
	pool.tx = tx

	err := m.InTx(context.Background(), func(pgx.Tx) error { return nil })
	assert.NilError(t, err)
	assert.Assert(t, tx.committed)
	assert.Assert(t, !tx.rolledBack)
}

func TestManagerInTxRollsBackOnError(t *testing.T) {
	boom := errors.New("serialization conflict")
	m, pool := managerOverStub(t)
	tx := &stubTx{}
	pool.tx = tx

	err := m.InTx(context.Background(), func(pgx.Tx) error { return boom })
	assert.Assert(t, errors.Is(err, boom))
	assert.Assert(t, tx.rolledBack)
	assert.Assert(t, !tx.committed)
}

func TestManagerInTxRollsBackOnPanic(t *testing.T) {
	m, pool := managerOverStub(t)
	tx := &stubTx{}
	pool.tx = tx

	func() {
		defer func() {
			assert.Equal(t, recover(), "kaboom")
		}()
		_ = m.InTx(context.Background(), func(pgx.Tx) error { panic("kaboom") })
	}()
	assert.Assert(t, tx.rolledBack)
	assert.Assert(t, !tx.committed)
}

func TestManagerInTxBeginError(t *testing.T) {
	boom := errors.New("too many clients")
	m, pool := managerOverStub(t)
	pool.beginErr = boom

	err := m.InTx(context.Background(), func(pgx.Tx) error { return nil })
	assert.Assert(t, errors.Is(err, boom))
	assert.ErrorContains(t, err, `begin on "billing"`)
}
