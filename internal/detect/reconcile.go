package detect

import "sort"

// RenamePair links a path that disappeared with the path that appears to
// have replaced it, detected by matching content hash.
type RenamePair struct {
	OldPath string
	NewPath string
}

// ReconcileResult is the outcome of one full-scan reconciliation pass.
type ReconcileResult struct {
	Deleted []string
	Renamed []RenamePair
}

// Reconcile detects deletes and renames between the set of previously
// current paths and the set of paths observed in a fresh full scan.
//
// previousCurrent maps every path that was is_current before this scan to
// its content hash. presentHashes maps every path observed on disk during
// this scan to its freshly computed content hash.
//
// A path present in previousCurrent but absent from presentHashes is
// missing. If its old hash matches the hash of some other present path not
// already claimed by a prior record, that pair is reported as a rename;
// otherwise the path is reported deleted. When more than one present path
// shares the missing path's hash, the lexicographically smallest
// unclaimed candidate wins, and missing paths are resolved in
// lexicographic order so the assignment is deterministic.
func Reconcile(previousCurrent map[string]string, presentHashes map[string]string) ReconcileResult {
	hashToPaths := make(map[string][]string, len(presentHashes))
	for path, hash := range presentHashes {
		if _, wasAlreadyCurrent := previousCurrent[path]; wasAlreadyCurrent {
			continue
		}
		hashToPaths[hash] = append(hashToPaths[hash], path)
	}
	for hash, paths := range hashToPaths {
		sort.Strings(paths)
		hashToPaths[hash] = paths
	}

	var missing []string
	for path := range previousCurrent {
		if _, present := presentHashes[path]; !present {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)

	claimed := make(map[string]bool)

	var result ReconcileResult
	for _, oldPath := range missing {
		hash := previousCurrent[oldPath]
		candidate := pickCandidate(hashToPaths[hash], oldPath, claimed)
		if candidate == "" {
			result.Deleted = append(result.Deleted, oldPath)
			continue
		}
		claimed[candidate] = true
		result.Renamed = append(result.Renamed, RenamePair{OldPath: oldPath, NewPath: candidate})
	}

	return result
}

func pickCandidate(sortedPaths []string, oldPath string, claimed map[string]bool) string {
	for _, p := range sortedPaths {
		if p == oldPath || claimed[p] {
			continue
		}
		return p
	}
	return ""
}
