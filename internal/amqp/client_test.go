package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/alert"
)

type fakeChannel struct {
	declareErr error
	publishErr error
	bound      [3]string
	published  []amqp091.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp091.Table) error {
	return f.declareErr
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	f.bound = [3]string{name, key, exchange}
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}

	if f.publishErr != nil {
		return f.publishErr
	}

	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)

	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestClient_Setup(t *testing.T) {
	ch := &fakeChannel{}

	_, err := newClient(ch, "finplan", "budget-alerts")
	require.NoError(t, err)
	assert.Equal(t, [3]string{"budget-alerts", "budget-alerts", "finplan"}, ch.bound)

	failing := &fakeChannel{declareErr: errors.New("access refused")}

	_, err = newClient(failing, "finplan", "budget-alerts")
	assert.Error(t, err)
	assert.True(t, failing.closed)
}

func TestClient_PublishBudgetAlert(t *testing.T) {
	ch := &fakeChannel{}

	c, err := newClient(ch, "finplan", "budget-alerts")
	require.NoError(t, err)

	a := &alert.BudgetAlert{
		CategoryID:   uuid.New(),
		CategoryName: "Food",
		Month:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Budget:       decimal.NewFromInt(200),
		Spent:        decimal.RequireFromString("250.5"),
		Overspent:    decimal.RequireFromString("50.5"),
	}

	require.NoError(t, c.PublishBudgetAlert(context.Background(), a))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "budget-alerts", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "Food", body["category_name"])
	assert.Equal(t, "50.5", body["overspent"])
}

func TestClient_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}

	c, err := newClient(ch, "finplan", "budget-alerts")
	require.NoError(t, err)

	err = c.PublishBudgetAlert(context.Background(), &alert.BudgetAlert{CategoryName: "Food"})
	assert.Error(t, err)
}
