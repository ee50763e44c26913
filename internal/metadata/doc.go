// Package metadata consumes the testbed node's modem metadata stream.
//
// Each node runs a metadata broker that publishes device state over ZeroMQ.
// A [Stream] subscribes to the modem topic and yields raw topic/payload
// pairs; [ParseUpdate] decodes the payloads that carry modem state updates.
//
// A [ModemUpdate] ties a network interface to the SIM and carrier currently
// behind it, which is what the launcher needs to decide where a measurement
// should run. Malformed messages are reported as [ErrMalformed] so callers
// can skip them without tearing down the subscription.
//
// Example usage:
//
//	stream, err := metadata.Dial(ctx, metadata.DefaultEndpoint)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for {
//	    topic, payload, err := stream.Recv()
//	    if err != nil {
//	        return err
//	    }
//	    if !metadata.IsModemUpdate(topic) {
//	        continue
//	    }
//	    update, err := metadata.ParseUpdate(payload)
//	    if err != nil {
//	        continue
//	    }
//	    // act on update
//	}
package metadata
