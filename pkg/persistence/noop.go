package persistence

// NoopSink implements Sink with every write as a no-op; it backs ephemeral
// mode and tests (spec.md §9).
type NoopSink struct{}

func (NoopSink) InsertSeenCell(SeenCellTowerEntity) error    { return nil }
func (NoopSink) InsertTrustedCell(TrustedCellEntity) error   { return nil }
func (NoopSink) InsertEvent(CellularEventEntity) error       { return nil }
func (NoopSink) TrimEvents(int) error                        { return nil }
func (NoopSink) DeleteAllSeenCells() error                   { return nil }
func (NoopSink) DeleteAllTrustedCells() error                { return nil }
func (NoopSink) DeleteAllEvents() error                      { return nil }
func (NoopSink) SnapshotSeenCells() ([]SeenCellTowerEntity, error)    { return nil, nil }
func (NoopSink) SnapshotTrustedCells() ([]TrustedCellEntity, error)   { return nil, nil }
func (NoopSink) SnapshotEvents() ([]CellularEventEntity, error)       { return nil, nil }
func (NoopSink) SetEphemeral(bool, func() ([]TrustedCellEntity, []CellularEventEntity)) error {
	return nil
}
func (NoopSink) Close() error { return nil }
