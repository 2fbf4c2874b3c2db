package write_buffer

import (
	"context"
	"fmt"
	"github.com/Avi18971911/Insights/internal/db/elasticsearch/client"
	"go.uber.org/zap"
	"sync"
	"time"
)

const WriteQueueSize = 30
const flushTimeOut = 10 * time.Second

type DatabaseWriteBuffer[ValueType any] interface {
	// WriteToBuffer queues the values and flushes in the background once more than WriteQueueSize are queued.
	WriteToBuffer(values []ValueType)
	// Flush writes whatever is queued and waits for the background flushes already started.
	Flush(ctx context.Context) error
}

type DatabaseWriteBufferImpl[ValueType any] struct {
	writeQueue  []ValueType
	ac          client.InsightsClient
	esIndexName string
	logger      *zap.Logger
	mu          sync.Mutex
	inFlight    sync.WaitGroup
}

func NewDatabaseWriteBufferImpl[ValueType any](
	ac client.InsightsClient,
	esIndexName string,
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue:  []ValueType{},
		ac:          ac,
		esIndexName: esIndexName,
		logger:      logger,
	}
}

func (wb *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(values []ValueType) {
	wb.mu.Lock()
	wb.writeQueue = append(wb.writeQueue, values...)
	if len(wb.writeQueue) <= WriteQueueSize {
		wb.mu.Unlock()
		return
	}
	batch := wb.takeQueue()
	wb.inFlight.Add(1)
	wb.mu.Unlock()

	go func() {
		defer wb.inFlight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
		defer cancel()
		if err := wb.flushToElasticsearch(ctx, batch); err != nil {
			wb.logger.Error(
				"Failed to flush to Elasticsearch",
				zap.String("index", wb.esIndexName),
				zap.Int("documents", len(batch)),
				zap.Error(err),
			)
		}
	}()
}

func (wb *DatabaseWriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wb.mu.Lock()
	batch := wb.takeQueue()
	wb.mu.Unlock()
	err := wb.flushToElasticsearch(ctx, batch)
	wb.inFlight.Wait()
	return err
}

// takeQueue must be called with mu held.
func (wb *DatabaseWriteBufferImpl[ValueType]) takeQueue() []ValueType {
	batch := wb.writeQueue
	wb.writeQueue = []ValueType{}
	return batch
}

func (wb *DatabaseWriteBufferImpl[ValueType]) flushToElasticsearch(ctx context.Context, batch []ValueType) error {
	if len(batch) == 0 {
		return nil
	}
	metaMap, dataMap, err := client.ToMetaAndDataMap(batch)
	if err != nil {
		return fmt.Errorf("error converting write queue to meta and data map: %w", err)
	}
	bulkCtx, cancel := context.WithTimeout(ctx, flushTimeOut)
	defer cancel()
	err = wb.ac.BulkIndex(
		bulkCtx,
		metaMap,
		dataMap,
		wb.esIndexName,
	)
	if err != nil {
		return fmt.Errorf("error bulk indexing to Elasticsearch: %w", err)
	}
	wb.logger.Debug(
		"Flushed write buffer to Elasticsearch",
		zap.String("index", wb.esIndexName),
		zap.Int("documents", len(batch)),
	)
	return nil
}
