// Package student contains the domain model of a student record.
//
// The package defines:
//
//   - Record, the sole entity, with the optional graduate Program variant
//   - Field, the selector used by search and sort
//   - the field validators and ValidateAllFields
//   - the SnapshotStore interface implemented in infrastructure/persistence
//
// # Invariants
//
// A record reaching the store through the roster has passed
// ValidateAllFields, carries an uppercased NIM that is unique within the
// roster, and keeps its ID and TanggalMasuk for its whole lifetime.
//
// # Example
//
//	in := student.Input{
//	    NIM:      "if123456",
//	    Nama:     "Budi Santoso",
//	    Email:    "budi@kampus.ac.id",
//	    Jurusan:  "Teknik Informatika",
//	    Semester: 5,
//	    IPK:      3.45,
//	}
//	rec := in.ToRecord(uuid.NewString(), timeutil.Today(nil))
//	if res := student.ValidateAllFields(rec); !res.Valid {
//	    return res.Err("Add")
//	}
package student
