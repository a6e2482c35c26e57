package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/************ fake pgx ************/
type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr         error
	qrBlockedTill *time.Time
	qrHitsRet     int
	qrArgs        []any

	lastExecSQL string
	execErr     error
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.qrArgs = args
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			if f.qrBlockedTill != nil {
				*(dest[0].(*time.Time)) = *f.qrBlockedTill
			} else {
				*(dest[0].(*time.Time)) = time.Unix(0, 0) // 'epoch'
			}
			return nil
		}}
	case strings.Contains(sql, "RETURNING hits"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.qrHitsRet
			return nil
		}}
	default:
		return fakeRow{scan: func(dest ...any) error { return errors.New("unexpected query") }}
	}
}

var testPolicy = Policy{Window: 15 * time.Minute, MaxHits: 5, BlockFor: 10 * time.Minute}

func TestAllow_NoRow_Allows(t *testing.T) {
	fp := &fakePool{qrErr: pgx.ErrNoRows}
	l := NewPG(fp, ScopeLogin, testPolicy)

	ok, dur, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow no-row: ok=%v dur=%v err=%v", ok, dur, err)
	}
	if fp.qrArgs[0] != ScopeLogin {
		t.Fatalf("scope must be the first arg, got %v", fp.qrArgs[0])
	}
}

func TestAllow_BlockedUntilFuture(t *testing.T) {
	fut := time.Now().Add(10 * time.Minute)
	fp := &fakePool{qrBlockedTill: &fut}
	l := NewPG(fp, ScopeLead, testPolicy)

	ok, dur, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || ok || dur <= 0 {
		t.Fatalf("Allow blocked: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_PastOrEpoch_Allows(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	for _, bt := range []*time.Time{&past, nil} {
		fp := &fakePool{qrBlockedTill: bt}
		l := NewPG(fp, ScopeLogin, testPolicy)

		ok, dur, err := l.Allow(context.Background(), "u", []byte("h"))
		if err != nil || !ok || dur != 0 {
			t.Fatalf("Allow past: ok=%v dur=%v err=%v", ok, dur, err)
		}
	}
}

func TestAllow_DBError_Propagates(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("db boom")}
	l := NewPG(fp, ScopeLogin, testPolicy)

	ok, _, err := l.Allow(context.Background(), "u", []byte("h"))
	if err == nil || ok {
		t.Fatalf("want error propagate, got ok=%v err=%v", ok, err)
	}
}

func TestReset_ExecError_Propagates(t *testing.T) {
	fp := &fakePool{execErr: errors.New("exec fail")}
	l := NewPG(fp, ScopeLogin, testPolicy)

	if err := l.Reset(context.Background(), "u", []byte("h")); err == nil {
		t.Fatalf("want exec error")
	}
}

func TestReset_OK(t *testing.T) {
	fp := &fakePool{}
	l := NewPG(fp, ScopeLogin, testPolicy)

	if err := l.Reset(context.Background(), "u", []byte("h")); err != nil {
		t.Fatalf("reset err: %v", err)
	}
	if !strings.Contains(fp.lastExecSQL, "INSERT INTO rate_limits") {
		t.Fatalf("unexpected exec: %s", fp.lastExecSQL)
	}
}

func TestHit_Increments_NoBlock(t *testing.T) {
	fp := &fakePool{qrHitsRet: 2}
	l := NewPG(fp, ScopeLead, testPolicy)

	blocked, dur, err := l.Hit(context.Background(), "u", []byte("h"))
	if err != nil || blocked || dur != 0 {
		t.Fatalf("Hit no block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if fp.lastExecSQL != "" {
		t.Fatalf("no block update expected, exec=%s", fp.lastExecSQL)
	}
}

func TestHit_BlocksAtThreshold(t *testing.T) {
	fp := &fakePool{qrHitsRet: 5}
	l := NewPG(fp, ScopeLead, testPolicy)

	blocked, dur, err := l.Hit(context.Background(), "u", []byte("h"))
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("Hit block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if !strings.Contains(fp.lastExecSQL, "UPDATE rate_limits SET blocked_until") {
		t.Fatalf("must update blocked_until, exec=%s", fp.lastExecSQL)
	}
}

func TestHit_DBErrorOnReturning(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("query error")}
	l := NewPG(fp, ScopeLogin, testPolicy)

	if _, _, err := l.Hit(context.Background(), "u", []byte("h")); err == nil {
		t.Fatalf("want error from returning hits")
	}
}

func TestHashIP_Determinism(t *testing.T) {
	a := HashIP("1.2.3.4")
	b := HashIP("1.2.3.4")
	c := HashIP("5.6.7.8")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}
