/*
Package quickfast implements the wire-level core of a FAST (FIX Adapted for
STreaming) market-data codec: the bit-packed presence map that accompanies
every FAST message, and a multicast ingestion pipeline that moves UDP
datagrams from the network to a consumer with bounded buffers and no
dropped packets under load.

Scope

This module implements two subsystems to the letter:

  - core/pmap: the presence map bit-packing and stop-bit framing codec.
  - core/buffers + core/multicast: the buffer pool, single-server inbound
    queue, and multicast receiver that drains it.

Template parsing, field operator semantics (copy/increment/delta/tail), and
scalar FAST field encoding are out of scope — this module only tells a
caller which fields were transmitted and hands it the raw bytes of each
message, in order, exactly once.

Quick Start

Basic usage example:

	package main

	import (
	    "log"

	    "github.com/searchktools/quickfast/app"
	    "github.com/searchktools/quickfast/config"
	    "github.com/searchktools/quickfast/core/multicast"
	)

	func main() {
	    cfg := config.New()
	    application := app.New(cfg)

	    var consumer multicast.NopConsumer
	    if err := application.Run(consumer); err != nil {
	        log.Fatal(err)
	    }
	}

Modules

The module is organized into the following packages:

  - app: receiver lifecycle management (start, graceful shutdown)
  - config: configuration loading and hot-reloadable settings
  - core/pmap: the presence map codec
  - core/buffers: the buffer pool and single-server inbound queue
  - core/multicast: the multicast receiver and its reactor
  - core/poller: epoll/kqueue I/O readiness multiplexing
  - core/pools: byte, worker, and self-tuning object pools
  - core/observability: consumer latency monitoring

Performance

The buffer pool, inbound queue, and reactor are built to keep a receiver
decode-bound rather than allocation-bound:

  - Fixed buffer set: allocated once at Start, reused for the receiver's
    lifetime, never grown under load.
  - Zero-copy handoff: a filled buffer moves from socket to queue to
    consumer by pointer; it is only ever copied by the consumer itself.
  - Single active consumer: the service token guarantees ConsumeBuffer is
    never called concurrently with itself, so consumers don't need their
    own locking.

For more on the protocol itself, see the FAST specification at
https://www.fixtrading.org/standards/fast/.
*/
package quickfast
