// Copyright (c) 2024 Neomantra Corp
//
// UserRecord is the generic escape hatch for record types the catalog's
// fixed RecordType enum doesn't know about — a strategy-defined signal,
// an alternative-data feed, anything with a "this instrument, this
// timestamp, some payload" shape. It satisfies Record, but the ingestion
// pipeline, the catalog store and replay have no path for it: the only
// writer that accepts it is streamwriter.AppendUserRecords, which stores
// it as newline-delimited JSON.

package mdcat

// UserRecord wraps an arbitrary payload T with the header every catalog
// record carries.
type UserRecord[T any] struct {
	Header  RHeader
	RName   string // caller-chosen table/type name, e.g. "my_signal"
	Payload T
}

func NewUserRecord[T any](name string, header RHeader, payload T) *UserRecord[T] {
	return &UserRecord[T]{Header: header, RName: name, Payload: payload}
}

// RType always reports RecordType_UserDefined; callers distinguish user
// record kinds by RName, not by RType, since the RecordType enum is closed.
func (r *UserRecord[T]) RType() RecordType { return RecordType_UserDefined }

// Name returns the caller-chosen type name this record was created with.
// Nothing in this module routes records by it; streamwriter.AppendUserRecords
// takes its stream name as a separate argument.
func (r *UserRecord[T]) Name() string { return r.RName }
