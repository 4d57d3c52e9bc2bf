package events

import "github.com/streadway/amqp"

// Publisher публикует события аккаунтов в заранее настроенный канал.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// AccountRegistered публикует событие регистрации аккаунта.
func (p *Publisher) AccountRegistered(ev RegisteredEvent) error {
	return PublishMessage(p.ch, Exchange, RoutingKeyRegistered, ev)
}
