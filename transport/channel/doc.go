// Package channel is the client side of the relay connection.
//
// A Connector dials the relay once and hands every caller the same
// Channel. A Channel sends protocol messages fire-and-forget and delivers
// every valid inbound message, including echoes of its own sends, to a
// single handler in receipt order:
//
//	ch, err := channel.NewConnector("ws://localhost:8080/ws", log).Connect(ctx)
//	if err != nil {
//		return err
//	}
//	ch.OnMessage(func(msg protocol.Message) { ... })
//	ch.Send(protocol.Hello{})
//
// Nothing is retried. Frames that do not decode are logged and dropped.
package channel
