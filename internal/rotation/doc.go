// Package rotation selects the ordered subset of questions to present for one
// attempt of an assessment test.
//
// Selection is a pure function of the test definition, the question bank and
// the request (base seed, user, resource, attempt number). Each section is
// permuted once from a seed derived from its identity, and every attempt slides
// a window of the section's selection size over that permutation. Consecutive
// attempts therefore never repeat a question until the whole section bank has
// been seen.
//
// Nothing in this package keeps rotation state between calls. The attempt
// number supplied by the caller is the only position.
package rotation
