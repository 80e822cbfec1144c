package reactive

// Batch groups source notifications into a single notification phase.
// Listeners notified inside fn are collected, deduplicated, and marked dirty
// once when the outermost batch completes.
//
//	Batch(func() {
//	    prefs.SetLanguage("ar")
//	    prefs.SetMadhab(appstate.MadhabHanafi)
//	})
//	// Views reading both fields re-render once
func Batch(fn func()) {
	gid, ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			flushPending(ctx)
		}
		release(gid, ctx)
	}()

	fn()
}

// flushPending deduplicates and notifies all pending listeners.
func flushPending(ctx *trackingContext) {
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}
