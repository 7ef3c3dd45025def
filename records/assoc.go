package records

import (
	"fmt"
	"iter"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/internal/binary"
)

const minAssociatedTypeRecordSize = 8

// AssociatedTypeDescriptor records the witnesses one type supplies for the
// associated types of one protocol it conforms to.
type AssociatedTypeDescriptor struct {
	names              NameReader
	Records            []AssociatedTypeRecord
	Address            uint64
	conformingTypeName binary.Relative
	protocolTypeName   binary.Relative
	RecordSize         uint32
}

// NumAssociatedTypes returns the number of witness records.
func (ad *AssociatedTypeDescriptor) NumAssociatedTypes() int {
	return len(ad.Records)
}

// ConformingTypeName returns the mangled name of the conforming type.
func (ad *AssociatedTypeDescriptor) ConformingTypeName() (string, error) {
	return readName(ad.names, ad.conformingTypeName, true, SectionAssocTy, ad.Address)
}

// ProtocolTypeName returns the mangled name of the protocol.
func (ad *AssociatedTypeDescriptor) ProtocolTypeName() (string, error) {
	return readName(ad.names, ad.protocolTypeName, true, SectionAssocTy, ad.Address)
}

// AssociatedTypeRecord binds one associated type name to its witness.
type AssociatedTypeRecord struct {
	names               NameReader
	Address             uint64
	name                binary.Relative
	substitutedTypeName binary.Relative
}

// Name returns the associated type's name, e.g. "Element".
func (a AssociatedTypeRecord) Name() (string, error) {
	return readName(a.names, a.name, false, SectionAssocTy, a.Address)
}

// SubstitutedTypeName returns the mangled witness type.
func (a AssociatedTypeRecord) SubstitutedTypeName() (string, error) {
	return readName(a.names, a.substitutedTypeName, true, SectionAssocTy, a.Address)
}

// Descriptors iterates the section's associated type descriptors with the
// same error handling as FieldSection.Descriptors.
func (s AssociatedTypeSection) Descriptors(names NameReader) iter.Seq2[*AssociatedTypeDescriptor, error] {
	return func(yield func(*AssociatedTypeDescriptor, error) bool) {
		r := s.reader()
		for r.Len() > 0 {
			start := r.Address()
			ad, next, err := parseAssociatedTypeDescriptor(r, names, s.Name)
			if err != nil {
				if !yield(nil, errors.Malformed(SectionAssocTy, start, err)) || !next {
					return
				}
				continue
			}
			if !yield(ad, nil) {
				return
			}
		}
	}
}

func parseAssociatedTypeDescriptor(r *binary.Reader, names NameReader, section string) (ad *AssociatedTypeDescriptor, next bool, err error) {
	ad = &AssociatedTypeDescriptor{names: names, Address: r.Address()}

	if ad.conformingTypeName, err = r.ReadRelative(); err != nil {
		return nil, false, r.WrapError(section, err)
	}
	if ad.protocolTypeName, err = r.ReadRelative(); err != nil {
		return nil, false, r.WrapError(section, err)
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, false, r.WrapError(section, err)
	}
	if ad.RecordSize, err = r.ReadU32(); err != nil {
		return nil, false, r.WrapError(section, err)
	}

	body, err := bodySize(count, ad.RecordSize)
	if err != nil || body > r.Len() {
		return nil, false, r.WrapError(section,
			fmt.Errorf("%d associated type records of %d bytes overrun the section: %w", count, ad.RecordSize, binary.ErrTruncated))
	}
	if count > 0 && ad.RecordSize < minAssociatedTypeRecordSize {
		skipErr := r.Skip(body)
		return nil, skipErr == nil, r.WrapError(section,
			fmt.Errorf("associated type record size %d is smaller than %d", ad.RecordSize, minAssociatedTypeRecordSize))
	}

	ad.Records = make([]AssociatedTypeRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		rec := AssociatedTypeRecord{names: names, Address: r.Address()}
		if rec.name, err = r.ReadRelative(); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		if rec.substitutedTypeName, err = r.ReadRelative(); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		if err := r.Skip(int(ad.RecordSize) - minAssociatedTypeRecordSize); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		ad.Records = append(ad.Records, rec)
	}
	return ad, true, nil
}
