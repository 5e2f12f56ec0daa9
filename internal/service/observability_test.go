package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	observe(context.Background(), obs, "project_upsert", time.Now(), nil, map[string]any{"project_id": "p1"})

	out := buf.String()
	assert.Contains(t, out, "use_case=project_upsert")
	assert.Contains(t, out, "success=true")
	assert.Contains(t, out, "project_id=p1")
	assert.Contains(t, out, "level=INFO")
}

func TestLogUseCaseObserver_Error(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	observe(context.Background(), obs, "project_score", time.Now(), errors.New("boom"), nil)

	out := buf.String()
	assert.Contains(t, out, "success=false")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "level=ERROR")
}

func TestNewLogUseCaseObserver_NilWriter(t *testing.T) {
	obs := NewLogUseCaseObserver(nil)
	assert.IsType(t, NoopUseCaseObserver{}, obs)
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))

	custom := NewLogUseCaseObserver(&bytes.Buffer{})
	assert.Equal(t, custom, useCaseObserverOrNoop([]UseCaseObserver{custom}))
}
