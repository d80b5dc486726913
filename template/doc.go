// Package template defines reusable server blueprints: a command line
// with typed variables that render into a concrete configuration entry.
//
// A template declares its variables up front (type, default, required,
// allowed options) and references them as {{name}} placeholders in the
// command, arguments and environment. Rendering is strict: every
// placeholder must resolve to a declared variable or a builtin, and
// required variables must be supplied. Builtin placeholders {{os}},
// {{arch}}, {{home_dir}} and {{config_dir}} describe the host machine.
//
// Templates come from three places: the builtin set compiled into the
// binary, the local cache, and the remote catalog (see the catalog
// subpackage). All three share the JSON shape defined here.
package template
