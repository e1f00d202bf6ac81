// Package relocate moves validated payloads to their destination.
//
// Two topologies exist: a directory-backed destination (one recursive copy of
// the payload to <root>/<refid>) and an object-store-backed destination (one
// upload per file, keyed <refid>/<filename>, with a content type from a fixed
// extension map). Relocation is not transactional; Purge removes whatever
// partial output a failed run left under the refid prefix so a retry starts
// clean.
package relocate
