// Package manifest loads batch job files. A manifest names a cgit
// installation and the extractions to run against it, so a single
// invocation can collect several pages into one result document.
//
// # Manifest Format
//
// Manifests can be written in YAML or JSON format:
//
//	base_url: https://git.example.org/cgit
//	jobs:
//	  - kind: refs
//	    repo: tools/cgit
//	  - kind: log
//	    repo: tools/cgit
//	    ref: master
//	    offset: 50
//	  - kind: commit
//	    repo: tools/cgit
//	    shas: [0123456789abcdef0123456789abcdef01234567]
//	  - kind: get
//	    url: https://git.example.org/cgit/tools/cgit/about/
//	options:
//	  continue_on_error: true
//	  output: results.json
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoJobs: manifest has no jobs defined
//   - ErrUnknownKind: a job names an unsupported kind
//   - ErrMissingField: a job lacks a field its kind requires
//   - ErrNoBaseURL: repository jobs without a base_url
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
