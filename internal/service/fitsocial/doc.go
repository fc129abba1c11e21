// Package fitsocial serves fitsocial.v1.SocialService over gRPC.
//
// Messages are plain Go structs carried as JSON under the content subtype
// "json" (content-type application/grpc+json). Clients must send that
// subtype on every call:
//
//	conn.Invoke(ctx, "/fitsocial.v1.SocialService/SignIn", req, resp,
//		grpc.CallContentSubtype(fitsocial.CodecName))
//
// Client does this for Go callers. With grpcurl, pass -format json and
// -H 'content-type: application/grpc+json'. The service has no protobuf
// descriptors, so server reflection lists its name but cannot describe its
// methods; message shapes are the JSON tags in messages.go. Calls using the
// default proto codec fail before reaching a handler.
//
// Every method except SignUp and SignIn needs "authorization: Bearer <token>"
// metadata (see WithToken).
package fitsocial
