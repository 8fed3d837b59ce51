// Package beamplan owns the channel allocation core for a multi-beam
// satellite payload: the occupancy grid, the carrier registry, the
// interference scan, and the priority-escalation allocator.
//
// Responsibilities: scoring candidate channels against the 18-beam reuse
// cluster, committing and releasing carriers, batch contention resolution,
// and conversion to/from the flat carrier-record interchange shape.
//
// Dependency rule: no SQL/database or HTTP code is allowed in this package;
// persistence lives in storage/sqlite and transport in internal/api.
package beamplan
