// Package password implements the password hashing capability: hash a plaintext into a
// self-describing digest and compare a plaintext against a stored digest.
//
// # Formats
//
// [Argon2] writes PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Bcrypt] writes standard $2a$/$2b$ digests. [Chain] hashes with its primary and
// verifies with whichever hasher recognises the stored digest, so accounts created with
// bcrypt keep signing in and are rehashed with Argon2id on their next sign-in.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other goSaaS package.
//   - Log plaintext passwords.
package password
