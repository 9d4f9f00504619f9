package core

import "encoding/binary"

// ProducerKey is a v0 schedule entry: a producer name and its single block
// signing key, packed as go-ethereum's 20-byte Address per spec.md §6.
type ProducerKey struct {
	ProducerName AccountName
	BlockSigning Address
}

// ProducerAuthority is a v1 schedule entry, allowing a weighted threshold
// of keys per producer instead of v0's single key.
type ProducerAuthority struct {
	ProducerName AccountName
	Threshold    uint32
	Keys         []WeightedKey
}

type WeightedKey struct {
	Key    Address
	Weight uint16
}

// scheduleDiscriminatorV0/V1 select the packed producer-schedule format,
// per spec.md §6: "Producer schedules use a leading uint64 format
// discriminator: 0 -> legacy vec<producer_key>, 1 -> vec<producer_authority>".
const (
	scheduleDiscriminatorV0 uint64 = 0
	scheduleDiscriminatorV1 uint64 = 1
)

// ProducerSchedule is the validated, decoded form of a proposed schedule.
type ProducerSchedule struct {
	Version uint32
	V0      []ProducerKey
	V1      []ProducerAuthority
	IsV1    bool
}

// DecodeProducerSchedule reads the discriminator-prefixed packed format.
// An unrecognized discriminator raises wasm_execution_error, per spec.md §6.
func DecodeProducerSchedule(data []byte) (discriminator uint64, rest []byte, err error) {
	if len(data) < 8 {
		return 0, nil, ErrorWasmExecution("producer schedule: truncated discriminator")
	}
	discriminator = binary.LittleEndian.Uint64(data)
	if discriminator != scheduleDiscriminatorV0 && discriminator != scheduleDiscriminatorV1 {
		return 0, nil, ErrorWasmExecution("producer schedule: unknown format discriminator")
	}
	return discriminator, data[8:], nil
}

// ValidateProducerNamesUnique rejects a schedule naming the same producer
// twice, per spec.md §8 scenario 4
// (`set_proposed_producers([{p, k1}, {p, k2}]) -> wasm_execution_error`).
func ValidateProducerNamesUnique(names []AccountName) error {
	seen := make(map[AccountName]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return ErrorWasmExecution("duplicate producer name")
		}
		seen[n] = struct{}{}
	}
	return nil
}

// ProducerScheduleManager holds the currently proposed schedule; applying
// it at a block boundary is the external block-production loop's job
// (spec.md §1 Out of scope) — this manager only validates and stores.
type ProducerScheduleManager struct {
	proposed *ProducerSchedule
}

func NewProducerScheduleManager() *ProducerScheduleManager {
	return &ProducerScheduleManager{}
}

func (m *ProducerScheduleManager) SetProposedV0(version uint32, producers []ProducerKey) error {
	names := make([]AccountName, len(producers))
	for i, p := range producers {
		names[i] = p.ProducerName
	}
	if err := ValidateProducerNamesUnique(names); err != nil {
		return err
	}
	m.proposed = &ProducerSchedule{Version: version, V0: producers}
	return nil
}

func (m *ProducerScheduleManager) SetProposedV1(version uint32, producers []ProducerAuthority) error {
	names := make([]AccountName, len(producers))
	for i, p := range producers {
		names[i] = p.ProducerName
	}
	if err := ValidateProducerNamesUnique(names); err != nil {
		return err
	}
	m.proposed = &ProducerSchedule{Version: version, V1: producers, IsV1: true}
	return nil
}

func (m *ProducerScheduleManager) Proposed() (*ProducerSchedule, bool) {
	return m.proposed, m.proposed != nil
}
