package bytecode

// Stats contains statistics about a compiled program.
type Stats struct {
	// InstructionCount is the total number of instructions across functions.
	InstructionCount int

	// FunctionCount is the number of compiled functions, including the entry
	// function of every source file.
	FunctionCount int

	PackageCount int
	StructCount  int
	NativeCount  int
	UpvalueCount int
	NumberCount  int
	StringCount  int
	FieldCount   int

	// SourceBytes is the size of every compiled source unit in bytes.
	SourceBytes int
}

// Stats summarises the program's tables.
func (p *Program) Stats() Stats {
	s := Stats{
		FunctionCount: len(p.Functions),
		PackageCount:  len(p.Packages),
		StructCount:   len(p.Structs),
		NativeCount:   len(p.Natives),
		UpvalueCount:  len(p.Upvalues),
		NumberCount:   len(p.Numbers),
		StringCount:   len(p.Strings),
		FieldCount:    len(p.Fields),
	}
	for _, fn := range p.Functions {
		s.InstructionCount += len(fn.Code)
	}
	for _, src := range p.Sources {
		s.SourceBytes += len(src.Contents)
	}
	return s
}
