// Package model defines the business objects held by the console's object store.
//
// An Instance is a class tag, an immutable id, two timestamps and a flat
// attribute bag. Attribute values are the sealed Value scalars (String, Int,
// Float); there is no reflection and no nesting.
//
// Key design constraints:
//   - Identity is "<Class>.<ID>" and is unique across the whole store
//   - Reserved keys (__class__, id, created_at, updated_at) never enter Attrs
//   - The persisted form is one JSON object per instance, one level deep, keys sorted
//   - Floats always serialize with a '.' or exponent so reload keeps their kind
//
// This package imports nothing internal.
package model
