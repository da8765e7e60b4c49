// Package formats provides parsers and encoders for engine asset formats.
package formats

// Note: block-compressed mip chain layout is implemented in mipchain.go
// Note: DDS container framing is implemented in dds.go
// Note: the packed mesh binary is implemented in mesh.go
