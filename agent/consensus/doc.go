// Package consensus turns a set of agent responses into a consensus score,
// a qualitative level and a recommended next action.
//
// Four interchangeable algorithms are provided: weighted_average,
// majority_rule, semantic_similarity and expert_weighted. SelectAlgorithm
// picks one deterministically from the response count and the conflict being
// resolved. Build never fails: when an algorithm returns an error or panics the
// builder substitutes a fixed fallback result and reports the failure through
// a FailureRecorder.
package consensus
