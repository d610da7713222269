// Package protocol defines the messages exchanged over the relay.
//
// Every message is a JSON record discriminated by a "_type" field:
//
//	{"_type":"hello"}
//	{"_type":"join","leader":true}
//	{"_type":"context","context":{"characters":[...],"colors":[...]}}
//	{"_type":"move","id":"...","color":"rgb(1,2,3)","direction":"up","spriteIndex":0}
//
// Message is a closed sum type: only Hello, Join, Snapshot and Move
// implement it. Decode returns ErrUnknownType for well-formed records with
// a tag it does not know, so callers can ignore them instead of failing.
package protocol
