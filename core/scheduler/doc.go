// Package scheduler assigns per-station charging rates under shared
// infrastructure limits. The reference algorithm sorts active sessions by a
// pluggable priority order and greedily commits, per session, the highest
// rate a pluggable search strategy can prove feasible against the network
// oracle given the rates already fixed for earlier sessions.
package scheduler
