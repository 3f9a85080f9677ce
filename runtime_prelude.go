package c99js

import _ "embed"

// PreludeJS is the embedded JavaScript-side runtime collaborator every
// generated module requires via `require("./runtime/prelude.js")`. It
// is written out alongside the generated module by the CLI so the
// `require` path resolves without any npm packaging step.
//
//go:embed runtime/prelude.js
var PreludeJS string
