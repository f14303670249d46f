// Package audit keeps a bounded, process wide history of the commands sent to
// any server.
//
// The Log is a ring buffer of Capacity entries. Appending to a full log drops the
// oldest EvictBatch entries in one step, so after Capacity+1 appends the log holds
// Capacity-EvictBatch+1 entries. Entries are formatted as
//
//	[<connection name>] <lowercased arguments joined by a space>
//
// with the cursor argument of the scan family omitted. Log implements the
// conn.Recorder interface and is injected into every connection.
package audit
