// Package session runs one player's view of the shared world.
//
// A Controller owns the local character and the latest World. It moves
// through three states:
//
//	Connecting -> Joining -> Active
//
// Start connects to the relay, registers Handle as the inbound handler and
// announces the player with a hello. The relay answers every hello by
// telling exactly one participant it leads; the leader replies with a full
// snapshot of its world. The first message processed after the hello moves
// the controller to Active.
//
// Handle is the only path that changes the world. Calls are serialized and
// each one folds the message through state.Reduce, so readers calling
// World always see a complete, immutable value.
//
// Usage:
//
//	ctrl := session.New(engine.NewCharacter(rng), session.WithLogger(log))
//	if err := ctrl.Start(ctx, connector); err != nil {
//		return err
//	}
//	ctrl.Subscribe(func(w engine.World) { redraw(w) })
//	ctrl.Move(engine.Right)
package session
