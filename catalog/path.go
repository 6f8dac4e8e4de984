// Copyright (c) 2024 Neomantra Corp
//
// Catalog path layout, grounded on persistence/catalog.py's
// "<root>/data/<class_name>.parquet" convention and the hive-style
// instrument_id= partitioning its _query builds on pyarrow.dataset. Here
// the layout is an explicit value (TableDir/PartitionDir) rather than a
// method on a global singleton catalog.

package catalog

import (
	"fmt"
	"path"

	"github.com/marketcore/mdcat-go"
)

// SchemaVersion marks the on-disk layout version this package writes and
// reads. No migration runner exists; this is a documented marker for
// future schema changes to record themselves against, per the original's
// persistence/migrations/ directory (not itself ported, since no migration
// runner is in scope).
const SchemaVersion = 1

const partitionMappingsFileName = "_partition_mappings.json"

// TableDir returns the root-relative directory a record type's table
// lives under, e.g. "data/quote_tick.parquet".
func TableDir(rt mdcat.RecordType) string {
	return path.Join("data", rt.TableName()+".parquet")
}

// UserTableDir returns the root-relative directory a named user-defined
// record table lives under.
func UserTableDir(name string) string {
	return path.Join("data", name+".parquet")
}

// InstrumentsDir returns the root-relative directory an instrument kind's
// table lives under, e.g. "instruments.parquet/crypto_future".
func InstrumentsDir(kind mdcat.InstrumentKind) string {
	return path.Join("instruments.parquet", kind.TableName())
}

// InstrumentsFile returns the single data file an instrument kind's table
// is stored as. Instruments are unpartitioned (§3: "instruments
// themselves live unpartitioned in a single file per subtype"), so unlike
// BoundsFileName there is no ts_init range to encode in the name.
func InstrumentsFile(kind mdcat.InstrumentKind) string {
	return path.Join(InstrumentsDir(kind), "data.parquet")
}

// PartitionDir returns a table directory's hive-style partition
// subdirectory for a sanitized instrument id, e.g.
// "data/quote_tick.parquet/instrument_id=BTC-USDT.BINANCE".
func PartitionDir(tableDir string, instrumentId mdcat.InstrumentId) string {
	key := mdcat.SanitizePartitionKey(instrumentId.String())
	return path.Join(tableDir, fmt.Sprintf("instrument_id=%s", key))
}

// DateFileName returns a partition's per-day data file name, e.g.
// "20240102.parquet". This is the compaction output name Validate's
// repartition pass writes (spec.md §4.10); normal ingestion names its
// files with BoundsFileName instead so a file's ts_init range is visible
// without opening it.
func DateFileName(ymd uint32) string {
	return fmt.Sprintf("%08d.parquet", ymd)
}

// BoundsFileName returns a partition data file name carrying the group's
// ts_init bounds, e.g. "1704182400000000000-1704182460000000000-0.parquet".
// This is the normal ingestion-time naming convention (spec.md:70):
// embedding min/max ts_init in the name lets a directory listing answer
// "does this file matter to my query window" without reading the file,
// and the suffix keeps two flushes landing on an identical ts_init range
// from colliding.
func BoundsFileName(tsInitMin, tsInitMax uint64, suffix string) string {
	return fmt.Sprintf("%d-%d-%s.parquet", tsInitMin, tsInitMax, suffix)
}

// MappingsFile returns a table directory's partition-key mapping sidecar
// path, mirroring external/metadata.py's PARTITION_MAPPINGS_FN.
func MappingsFile(tableDir string) string {
	return path.Join(tableDir, partitionMappingsFileName)
}
