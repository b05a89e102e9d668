package etl_test

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/etl"
	"github.com/bangtanmom/contentsync/pkg/models"
)

// memGateway is an in-memory backend holding one record list per instance.
type memGateway struct {
	mu sync.Mutex

	rows     map[string][]models.Record
	payloads []models.Record
	reads    []string
	nextID   int

	readErr      map[string]error
	failCreateOn string
}

func newMemGateway() *memGateway {
	return &memGateway{rows: map[string][]models.Record{}, readErr: map[string]error{}}
}

func (m *memGateway) seed(instance string, rows ...models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[instance] = append(m.rows[instance], rows...)
}

func (m *memGateway) Extract(_ context.Context, instance, _ string, limit int) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads = append(m.reads, instance)
	if err := m.readErr[instance]; err != nil {
		return nil, err
	}
	var out []models.Record
	for i, r := range m.rows[instance] {
		if i == limit {
			break
		}
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

func (m *memGateway) Load(_ context.Context, instance, collection string, record models.Record) (models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreateOn != "" && record.String("slug") == m.failCreateOn {
		return models.Receipt{}, &etl.UpstreamError{Op: "create", Instance: instance, Collection: collection, StatusCode: 400, Message: "Duplicate entry"}
	}
	m.payloads = append(m.payloads, cloneRecord(record))

	m.nextID++
	stored := cloneRecord(record)
	stored["id"] = m.nextID
	m.rows[instance] = append(m.rows[instance], stored)
	return models.Receipt{ID: fmt.Sprint(m.nextID)}, nil
}

func cloneRecord(r models.Record) models.Record {
	return maps.Clone(r)
}

func (m *memGateway) count(instance string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[instance])
}

type observation struct {
	res     *models.MigrationResult
	err     error
	elapsed time.Duration
}

type recordingObserver struct {
	calls []observation
}

func (o *recordingObserver) ObserveRun(res *models.MigrationResult, err error, elapsed time.Duration) {
	o.calls = append(o.calls, observation{res: res, err: err, elapsed: elapsed})
}

func testConfig() *config.Config {
	return &config.Config{
		APIKey:         "test-key",
		TargetInstance: "target",
		SourceInstance: "legacy",
		Collection:     "posts",
		FetchLimit:     config.DefaultFetchLimit,
		SourceBackend:  config.BackendNCB,
		TargetBackend:  config.BackendNCB,
	}
}
