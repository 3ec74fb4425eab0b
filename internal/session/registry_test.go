// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/session"
	"github.com/tomtom215/presencebridge/internal/session/sessiontest"
)

func TestResolveOrCreate_SingleConnectUnderConcurrency(t *testing.T) {
	gate := make(chan struct{})
	ft := &sessiontest.Transport{OpenHook: func(context.Context, models.Identity) error {
		<-gate
		return nil
	}}
	r := session.NewRegistry(ft, session.Options{})

	const callers = 16
	results := make([]*session.Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.ResolveOrCreate(context.Background(), "123")
			if err != nil {
				t.Errorf("ResolveOrCreate() error = %v", err)
			}
			results[i] = s
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := ft.Count("123", sessiontest.OpConnect); got != 1 {
		t.Errorf("connect calls = %d, want 1", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatal("callers received different sessions for one identity")
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestResolveOrCreate_IdentitiesDoNotBlockEachOther(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	ft := &sessiontest.Transport{OpenHook: func(_ context.Context, id models.Identity) error {
		if id == "slow" {
			<-gate
		}
		return nil
	}}
	r := session.NewRegistry(ft, session.Options{})

	go func() { _, _ = r.ResolveOrCreate(context.Background(), "slow") }()
	time.Sleep(10 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := r.ResolveOrCreate(context.Background(), "fast")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ResolveOrCreate(fast) error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ResolveOrCreate(fast) blocked behind another identity's connect")
	}
}

func TestResolveOrCreate_FailureRegistersNothing(t *testing.T) {
	var attempts atomic.Int32
	ft := &sessiontest.Transport{OpenHook: func(context.Context, models.Identity) error {
		if attempts.Add(1) == 1 {
			return discord.ErrUnreachable
		}
		return nil
	}}
	r := session.NewRegistry(ft, session.Options{})

	_, err := r.ResolveOrCreate(context.Background(), "123")
	var cerr *session.ConnectError
	if !errors.As(err, &cerr) || cerr.Kind != session.KindUnreachable {
		t.Fatalf("first ResolveOrCreate() error = %v, want unreachable ConnectError", err)
	}
	if _, ok := r.Lookup("123"); ok || r.Len() != 0 {
		t.Fatal("failed connect left a registry entry")
	}

	if _, err := r.ResolveOrCreate(context.Background(), "123"); err != nil {
		t.Fatalf("retry ResolveOrCreate() error = %v", err)
	}
	if got := ft.Count("123", sessiontest.OpConnect); got != 2 {
		t.Errorf("connect calls = %d, want 2", got)
	}
}

func TestResolveOrCreate_TimeoutRegistersNothing(t *testing.T) {
	ft := &sessiontest.Transport{OpenHook: func(ctx context.Context, _ models.Identity) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	r := session.NewRegistry(ft, session.Options{ConnectTimeout: 20 * time.Millisecond})

	_, err := r.ResolveOrCreate(context.Background(), "123")
	var cerr *session.ConnectError
	if !errors.As(err, &cerr) || cerr.Kind != session.KindTimeout {
		t.Fatalf("ResolveOrCreate() error = %v, want timeout ConnectError", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestResolveOrCreate_CallerCancelDoesNotAbortConnect(t *testing.T) {
	gate := make(chan struct{})
	ft := &sessiontest.Transport{OpenHook: func(context.Context, models.Identity) error {
		<-gate
		return nil
	}}
	r := session.NewRegistry(ft, session.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.ResolveOrCreate(ctx, "123"); err == nil {
		t.Fatal("ResolveOrCreate() with expired context error = nil")
	}

	close(gate)
	deadline := time.Now().Add(time.Second)
	for r.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, ok := r.Lookup("123"); !ok {
		t.Fatal("detached connect did not register the session")
	}
}

func TestClearAll(t *testing.T) {
	ft := &sessiontest.Transport{ClearErr: func(id models.Identity) error {
		if id == "b" {
			return sessiontest.ErrSevered
		}
		return nil
	}}
	r := session.NewRegistry(ft, session.Options{})
	for _, id := range []models.Identity{"a", "b", "c"} {
		if _, err := r.ResolveOrCreate(context.Background(), id); err != nil {
			t.Fatalf("ResolveOrCreate(%s) error = %v", id, err)
		}
	}

	err := r.ClearAll(context.Background(), nil)

	var serr *session.SweepError
	if !errors.As(err, &serr) {
		t.Fatalf("ClearAll() error = %v, want *SweepError", err)
	}
	if serr.Total != 3 || len(serr.Failures) != 1 || serr.Failures["b"] == nil {
		t.Errorf("SweepError = %+v", serr)
	}
	if !errors.Is(err, sessiontest.ErrSevered) {
		t.Error("SweepError does not unwrap to the session failure")
	}

	for _, id := range []models.Identity{"a", "b", "c"} {
		if got := ft.Count(id, sessiontest.OpClear); got != 1 {
			t.Errorf("clear calls for %s = %d, want 1", id, got)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len() after sweep = %d, want 3", r.Len())
	}
}

func TestClearAll_Executor(t *testing.T) {
	ft := &sessiontest.Transport{}
	r := session.NewRegistry(ft, session.Options{})
	_, _ = r.ResolveOrCreate(context.Background(), "a")
	_, _ = r.ResolveOrCreate(context.Background(), "b")

	var routed []models.Identity
	exec := func(id models.Identity, fn func(context.Context) error) <-chan error {
		routed = append(routed, id)
		ch := make(chan error, 1)
		ch <- fn(context.Background())
		return ch
	}

	if err := r.ClearAll(context.Background(), exec); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if len(routed) != 2 {
		t.Errorf("executor saw %v, want both identities", routed)
	}
	if ft.Count("a", sessiontest.OpClear) != 1 || ft.Count("b", sessiontest.OpClear) != 1 {
		t.Error("executor did not run the clears")
	}
}

func TestScheduleClearAll_SchedulesBeforeWaiting(t *testing.T) {
	ft := &sessiontest.Transport{}
	r := session.NewRegistry(ft, session.Options{})
	_, _ = r.ResolveOrCreate(context.Background(), "a")

	var scheduled atomic.Int32
	release := make(chan error, 1)
	wait := r.ScheduleClearAll(context.Background(), func(models.Identity, func(context.Context) error) <-chan error {
		scheduled.Add(1)
		return release
	})

	if scheduled.Load() != 1 {
		t.Fatal("ScheduleClearAll() returned before handing the clear to the executor")
	}
	release <- sessiontest.ErrSevered
	if err := wait(); !errors.Is(err, sessiontest.ErrSevered) {
		t.Errorf("wait() error = %v, want ErrSevered", err)
	}
}

func TestScheduleClearAll_PendingIdentities(t *testing.T) {
	ft := &sessiontest.Transport{}
	r := session.NewRegistry(ft, session.Options{})
	_, _ = r.ResolveOrCreate(context.Background(), "a")

	type queued struct {
		id models.Identity
		fn func(context.Context) error
		ch chan error
	}
	var jobs []queued
	exec := func(id models.Identity, fn func(context.Context) error) <-chan error {
		ch := make(chan error, 1)
		jobs = append(jobs, queued{id, fn, ch})
		return ch
	}

	wait := r.ScheduleClearAll(context.Background(), exec, "a", "late", "ghost")
	if len(jobs) != 3 {
		t.Fatalf("scheduled %d clears, want 3", len(jobs))
	}

	// "late" registers after scheduling, as a queued connect would.
	if _, err := r.ResolveOrCreate(context.Background(), "late"); err != nil {
		t.Fatalf("ResolveOrCreate(late) error = %v", err)
	}
	for _, j := range jobs {
		j.ch <- j.fn(context.Background())
	}
	if err := wait(); err != nil {
		t.Fatalf("wait() error = %v", err)
	}

	for id, want := range map[models.Identity]int{"a": 1, "late": 1, "ghost": 0} {
		if got := ft.Count(id, sessiontest.OpClear); got != want {
			t.Errorf("clear calls for %s = %d, want %d", id, got, want)
		}
	}
	if _, ok := r.Lookup("ghost"); ok {
		t.Error("a pending clear must not create a session")
	}
}

func TestClearAll_Empty(t *testing.T) {
	r := session.NewRegistry(&sessiontest.Transport{}, session.Options{})
	if err := r.ClearAll(context.Background(), nil); err != nil {
		t.Errorf("ClearAll() on empty registry error = %v", err)
	}
}

func TestRegistryClose(t *testing.T) {
	ft := &sessiontest.Transport{}
	r := session.NewRegistry(ft, session.Options{})
	_, _ = r.ResolveOrCreate(context.Background(), "b")
	_, _ = r.ResolveOrCreate(context.Background(), "a")

	ids := r.Identities()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Identities() = %v, want [a b]", ids)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if ft.Count("a", sessiontest.OpClose) != 1 || ft.Count("b", sessiontest.OpClose) != 1 {
		t.Error("Close() did not close every session")
	}
	if r.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", r.Len())
	}
	if _, err := r.ResolveOrCreate(context.Background(), "c"); !errors.Is(err, session.ErrRegistryClosed) {
		t.Errorf("ResolveOrCreate() after Close error = %v, want ErrRegistryClosed", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
