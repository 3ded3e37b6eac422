// Package connection manages a single point-to-point link between two
// devices.
//
// A Manager multiplexes the server role (two listeners, one per service
// variant) and the client role (one connector) into one state machine and,
// once a link is established, runs a data pump that streams raw bytes in
// both directions.
//
// # States
//
//	NONE        nothing running
//	LISTENING   secure and insecure listeners accepting
//	CONNECTING  connector dialing a peer (listeners keep accepting)
//	CONNECTED   pump running, listeners and connector gone
//
// # Tie-break
//
// Links can arrive from a listener and the connector at the same time. The
// manager keeps the first one that reaches it while the state allows it:
//   - a listener link is dropped when the state is NONE or CONNECTED
//   - a connector link is dropped when that connector is no longer current
//
// # Failures
//
// A failed connect or a lost link produces a notice and puts the manager
// back into LISTENING. Reports from workers that were already replaced or
// cancelled are ignored, so Stop is terminal.
//
// # Events
//
// State changes, device identification, data and notices are delivered to
// handlers registered with OnEvent. Events are queued in order under the
// manager lock and delivered on a single goroutine, so handlers may call back
// into the manager.
//
// # Redial
//
// Redialer optionally keeps a configured peer connected, retrying failed and
// lost connections with exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s
//  3. Maximum delay: 30 seconds
//  4. Reset to 1s once connected
//
// Jitter of up to 25% of the base delay is added to each wait.
package connection
