// Package rosmsg models ROS 2 message definitions as the compiler sees
// them: ordered fields with rosidl-style type descriptors plus named integer
// constants. Definitions are served through the Provider interface, either
// from an in-memory Registry or by parsing .msg files found on search paths.
package rosmsg
