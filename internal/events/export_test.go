package events

func NewAMQPEmitterForTests(s sender, source string) *AMQPEmitter {
	return &AMQPEmitter{sender: s, source: source}
}
