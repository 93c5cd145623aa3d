package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSessionHooks{}
	s.OnResolve(ctx, "abc", "url")
	s.OnSave(ctx, "abc", 120)
	s.OnSaveSkipped(ctx, "abc")
	s.OnReset(ctx, "abc")
	s.OnStorageError(ctx, "abc", "save", errors.New("quota"))

	st := NoopStorageHooks{}
	st.OnHit(ctx, "file")
	st.OnMiss(ctx, "redis")
	st.OnWrite(ctx, "mongo", 1024, time.Millisecond, nil)

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "GET", "/api/diagram", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := Storage().(NoopStorageHooks); !ok {
		t.Error("Storage() should return NoopStorageHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}

	customStorage := &testStorageHooks{}
	SetStorageHooks(customStorage)
	if Storage() != customStorage {
		t.Error("SetStorageHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Reset() should restore NoopSessionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSessionHooks{}
	SetSessionHooks(custom)
	SetSessionHooks(nil)

	if Session() != custom {
		t.Error("SetSessionHooks(nil) should be ignored")
	}

	Reset()
}

type testSessionHooks struct{ NoopSessionHooks }
type testStorageHooks struct{ NoopStorageHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
