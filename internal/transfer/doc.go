// Package transfer abstracts the object-storage collaborator.
//
// The validator only needs four verbs: download a source archive, upload a
// payload file, delete an object, and list a prefix. The S3 implementation
// rides minio-go and may parallelize large transfers internally; the
// filesystem implementation backs tests and air-gapped deployments where
// "buckets" are plain directories. Both present the same blocking contract.
package transfer
