package event_bus

import (
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sync"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestInsightsEventBus(t *testing.T) {
	t.Run("should deliver published values to subscribers", func(t *testing.T) {
		bus := NewInsightsEventBus[payload, payload](EventBus.New(), zap.NewNop())
		var mu sync.Mutex
		var received []payload
		err := bus.Subscribe("topic", func(input payload) error {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, input)
			return nil
		}, true)
		require.NoError(t, err)

		require.NoError(t, bus.Publish("topic", payload{Name: "a", Count: 1}))
		require.NoError(t, bus.Publish("topic", payload{Name: "b", Count: 2}))
		bus.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []payload{{Name: "a", Count: 1}, {Name: "b", Count: 2}}, received)
	})

	t.Run("should hand subscribers a copy of the published value", func(t *testing.T) {
		bus := NewInsightsEventBus[[]string, []string](EventBus.New(), zap.NewNop())
		var received []string
		require.NoError(t, bus.Subscribe("topic", func(input []string) error {
			received = input
			return nil
		}, true))
		published := []string{"x"}

		require.NoError(t, bus.Publish("topic", published))
		bus.Wait()
		published[0] = "changed"

		assert.Equal(t, []string{"x"}, received)
	})

	t.Run("should keep delivering after a handler fails", func(t *testing.T) {
		bus := NewInsightsEventBus[payload, payload](EventBus.New(), zap.NewNop())
		calls := 0
		require.NoError(t, bus.Subscribe("topic", func(input payload) error {
			calls++
			return errors.New("handler failed")
		}, true))

		require.NoError(t, bus.Publish("topic", payload{}))
		require.NoError(t, bus.Publish("topic", payload{}))
		bus.Wait()

		assert.Equal(t, 2, calls)
	})

	t.Run("should reject values that cannot be marshalled", func(t *testing.T) {
		bus := NewInsightsEventBus[any, any](EventBus.New(), zap.NewNop())

		err := bus.Publish("topic", make(chan int))

		assert.Error(t, err)
	})
}
