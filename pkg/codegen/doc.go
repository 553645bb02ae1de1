// Package codegen emits the C++ side of the bridge: per-message conversion
// units between ROS messages and their wire counterparts, the topic
// dispatcher class, the parameter cache/request handler class, and the CMake
// dependency snippet.
//
// A conversion unit carries both conversion directions as statement trees
// plus its nested-message dependencies. Which directions are actually
// emitted is decided at write time by traversing the dependency graph from
// the bridge registrations; a unit reachable in neither direction is an
// authoring error.
package codegen
