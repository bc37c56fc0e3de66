// Package assembler streams completions from hosted language-model APIs.
//
// Invariants:
// - Options are validated before any remote call is issued.
// - A Fragments sequence is single-use. Once Next returns false it stays false.
// - Remote failures end the sequence early and surface through Err as a *StreamError.
// - The SDK clients never retry on their own.
//
// Usage:
//
//	asm := assembler.New(assembler.Config{Providers: &assembler.ProviderFactory{...}})
//	frags, err := asm.Stream(ctx, store.All(), assembler.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer frags.Close()
//	for frags.Next() {
//		fmt.Print(frags.Current())
//	}
//	err = frags.Err()
package assembler
