// Command phonon builds per-phoneme cepstral datasets from annotated subject
// recordings.
//
// Each sub-directory of the data directory is one subject holding a
// recording, its label file and a biodata record. Rows are appended to one
// CSV per phoneme label in the output directory.
package main
