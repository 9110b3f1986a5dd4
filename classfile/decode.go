/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classfile

import "math"

// reader is a cursor over the raw class-file bytes. All multi-byte integers
// in the format are big-endian (spec §4.1).
type reader struct {
	b   []byte
	pos int
}

func (r *reader) remaining() int { return len(r.b) - r.pos }

func (r *reader) u1() (byte, error) {
	if r.remaining() < 1 {
		return 0, decodeErrorf(r.pos, "unexpected end of class file reading u1")
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u2() (uint16, error) {
	if r.remaining() < 2 {
		return 0, decodeErrorf(r.pos, "unexpected end of class file reading u2")
	}
	v := uint16(r.b[r.pos])<<8 | uint16(r.b[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if r.remaining() < 4 {
		return 0, decodeErrorf(r.pos, "unexpected end of class file reading u4")
	}
	v := uint32(r.b[r.pos])<<24 | uint32(r.b[r.pos+1])<<16 | uint32(r.b[r.pos+2])<<8 | uint32(r.b[r.pos+3])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, decodeErrorf(r.pos, "unexpected end of class file reading %d bytes", n)
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Decode parses raw class-file bytes into a ClassFile structural tree. It is
// a pure function: it has no knowledge of any other class and performs no
// I/O (spec §4.1/§9: the decoder is a leaf collaborator of the ClassManager).
func Decode(raw []byte) (*ClassFile, error) {
	r := &reader{b: raw}

	magic, err := r.u4()
	if err != nil {
		return nil, decodeErrorf(0, "short buffer reading magic number")
	}
	if magic != Magic {
		return nil, decodeErrorf(0, "bad magic number: got 0x%08X, want 0x%08X", magic, Magic)
	}

	cf := &ClassFile{}
	if cf.MinorVersion, err = r.u2(); err != nil {
		return nil, err
	}
	if cf.MajorVersion, err = r.u2(); err != nil {
		return nil, err
	}

	if err := decodeConstantPool(r, cf); err != nil {
		return nil, err
	}

	if cf.AccessFlags, err = r.u2(); err != nil {
		return nil, err
	}
	if cf.ThisClass, err = r.u2(); err != nil {
		return nil, err
	}
	if cf.SuperClass, err = r.u2(); err != nil {
		return nil, err
	}

	if err := decodeInterfaces(r, cf); err != nil {
		return nil, err
	}
	if err := decodeFields(r, cf); err != nil {
		return nil, err
	}
	if err := decodeMethods(r, cf); err != nil {
		return nil, err
	}
	if err := decodeClassAttributes(r, cf); err != nil {
		return nil, err
	}

	return cf, nil
}

func decodeConstantPool(r *reader, cf *ClassFile) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	// count includes one phantom entry at index 0; real entries number
	// count-1, but wide constants eat a second index, so the loop below
	// advances i by a variable amount rather than a fixed count-1 times.
	entries := make([]ConstantPoolEntry, count)
	entries[0] = Tombstone{}

	for i := 1; i < int(count); i++ {
		tag, err := r.u1()
		if err != nil {
			return err
		}
		switch tag {
		case TagUTF8:
			length, err := r.u2()
			if err != nil {
				return err
			}
			raw, err := r.bytes(int(length))
			if err != nil {
				return err
			}
			s, err := decodeModifiedUTF8(raw)
			if err != nil {
				return decodeErrorf(r.pos, "bad string encoding in constant #%d: %v", i, err)
			}
			entries[i] = ConstantUTF8{Value: s}

		case TagInteger:
			v, err := r.u4()
			if err != nil {
				return err
			}
			entries[i] = ConstantInteger{Value: int32(v)}

		case TagFloat:
			v, err := r.u4()
			if err != nil {
				return err
			}
			entries[i] = ConstantFloat{Value: math.Float32frombits(v)}

		case TagLong:
			hi, err := r.u4()
			if err != nil {
				return err
			}
			lo, err := r.u4()
			if err != nil {
				return err
			}
			entries[i] = ConstantLong{Value: int64(hi)<<32 | int64(lo)}
			i++ // tombstone at i+1
			if i < int(count) {
				entries[i] = Tombstone{}
			}

		case TagDouble:
			hi, err := r.u4()
			if err != nil {
				return err
			}
			lo, err := r.u4()
			if err != nil {
				return err
			}
			entries[i] = ConstantDouble{Value: math.Float64frombits(uint64(hi)<<32 | uint64(lo))}
			i++ // tombstone at i+1
			if i < int(count) {
				entries[i] = Tombstone{}
			}

		case TagClass:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantClass{NameIndex: idx}

		case TagString:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantString{StringIndex: idx}

		case TagFieldref:
			c, n, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantFieldref{ClassIndex: c, NameAndTypeIndex: n}

		case TagMethodref:
			c, n, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantMethodref{ClassIndex: c, NameAndTypeIndex: n}

		case TagInterfaceMethodref:
			c, n, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantInterfaceMethodref{ClassIndex: c, NameAndTypeIndex: n}

		case TagNameAndType:
			n, d, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantNameAndType{NameIndex: n, DescriptorIndex: d}

		case TagMethodHandle:
			kind, err := r.u1()
			if err != nil {
				return err
			}
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: idx}

		case TagMethodType:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantMethodType{DescriptorIndex: idx}

		case TagDynamic:
			bsm, nat, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantDynamic{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: nat}

		case TagInvokeDynamic:
			bsm, nat, err := decodeRefPair(r)
			if err != nil {
				return err
			}
			entries[i] = ConstantInvokeDynamic{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: nat}

		case TagModule:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantModule{NameIndex: idx}

		case TagPackage:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			entries[i] = ConstantPackage{NameIndex: idx}

		default:
			return decodeErrorf(r.pos-1, "unknown constant pool tag %d at entry #%d", tag, i)
		}
	}

	cf.ConstantPool = ConstantPool{Entries: entries}
	return nil
}

func decodeRefPair(r *reader) (uint16, uint16, error) {
	a, err := r.u2()
	if err != nil {
		return 0, 0, err
	}
	b, err := r.u2()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func decodeInterfaces(r *reader, cf *ClassFile) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	cf.Interfaces = make([]uint16, count)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = r.u2(); err != nil {
			return err
		}
	}
	return nil
}

func decodeFields(r *reader, cf *ClassFile) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	cf.Fields = make([]FieldInfo, count)
	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.AccessFlags, err = r.u2(); err != nil {
			return err
		}
		if f.NameIndex, err = r.u2(); err != nil {
			return err
		}
		if f.DescriptorIndex, err = r.u2(); err != nil {
			return err
		}
		if f.Attributes, err = decodeAttributes(r, cf); err != nil {
			return err
		}
	}
	return nil
}

func decodeMethods(r *reader, cf *ClassFile) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	cf.Methods = make([]MethodInfo, count)
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.AccessFlags, err = r.u2(); err != nil {
			return err
		}
		if m.NameIndex, err = r.u2(); err != nil {
			return err
		}
		if m.DescriptorIndex, err = r.u2(); err != nil {
			return err
		}
		if m.Attributes, err = decodeAttributes(r, cf); err != nil {
			return err
		}
		for _, a := range m.Attributes {
			if a.Name == "Code" {
				code, err := decodeCodeAttribute(a.Raw, cf)
				if err != nil {
					return err
				}
				m.Code = code
			}
		}
	}
	return nil
}

// decodeAttributes reads a generic attribute_info list, recognizing the
// class-level ones by name (spec §4.1) and resolving SourceFile/Deprecated/
// Synthetic/BootstrapMethods straight onto cf as a convenience, since those
// four are consulted outside the attribute a method/field/class owns them
// on. All other recognized and unrecognized attributes are kept as raw
// bytes and skipped using their declared length.
func decodeAttributes(r *reader, cf *ClassFile) ([]AttributeInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(int(length))
		if err != nil {
			return nil, decodeErrorf(r.pos, "attribute length %d overruns class file", length)
		}
		name := cf.ConstantPool.UTF8(nameIdx)
		attrs[i] = AttributeInfo{NameIndex: nameIdx, Name: name, Raw: raw}

		switch name {
		case "SourceFile":
			if len(raw) >= 2 {
				idx := uint16(raw[0])<<8 | uint16(raw[1])
				cf.SourceFile = cf.ConstantPool.UTF8(idx)
			}
		case "Deprecated":
			cf.Deprecated = true
		case "Synthetic":
			cf.Synthetic = true
		case "BootstrapMethods":
			bsms, err := decodeBootstrapMethods(raw)
			if err != nil {
				return nil, err
			}
			cf.BootstrapMethods = bsms
		}
	}
	return attrs, nil
}

func decodeBootstrapMethods(raw []byte) ([]BootstrapMethod, error) {
	br := &reader{b: raw}
	count, err := br.u2()
	if err != nil {
		return nil, err
	}
	out := make([]BootstrapMethod, count)
	for i := range out {
		ref, err := br.u2()
		if err != nil {
			return nil, err
		}
		nargs, err := br.u2()
		if err != nil {
			return nil, err
		}
		args := make([]uint16, nargs)
		for j := range args {
			if args[j], err = br.u2(); err != nil {
				return nil, err
			}
		}
		out[i] = BootstrapMethod{MethodRefIndex: ref, Arguments: args}
	}
	return out, nil
}

func decodeClassAttributes(r *reader, cf *ClassFile) error {
	attrs, err := decodeAttributes(r, cf)
	if err != nil {
		return err
	}
	cf.Attributes = attrs
	return nil
}

// decodeCodeAttribute parses the raw bytes of a Code attribute into its
// structured form: max_stack, max_locals, the bytecode itself, the
// exception table, and nested attributes (of which only LineNumberTable
// gets structured treatment; StackMapTable and anything else stays raw).
func decodeCodeAttribute(raw []byte, cf *ClassFile) (*CodeAttribute, error) {
	cr := &reader{b: raw}
	code := &CodeAttribute{}

	var err error
	if code.MaxStack, err = cr.u2(); err != nil {
		return nil, err
	}
	if code.MaxLocals, err = cr.u2(); err != nil {
		return nil, err
	}
	codeLength, err := cr.u4()
	if err != nil {
		return nil, err
	}
	if code.Code, err = cr.bytes(int(codeLength)); err != nil {
		return nil, err
	}

	excCount, err := cr.u2()
	if err != nil {
		return nil, err
	}
	code.ExceptionTable = make([]ExceptionTableEntry, excCount)
	for i := range code.ExceptionTable {
		e := &code.ExceptionTable[i]
		if e.StartPC, err = cr.u2(); err != nil {
			return nil, err
		}
		if e.EndPC, err = cr.u2(); err != nil {
			return nil, err
		}
		if e.HandlerPC, err = cr.u2(); err != nil {
			return nil, err
		}
		if e.CatchType, err = cr.u2(); err != nil {
			return nil, err
		}
	}

	nested, err := decodeAttributes(cr, cf)
	if err != nil {
		return nil, err
	}
	code.Attributes = nested
	for _, a := range nested {
		if a.Name == "LineNumberTable" {
			lines, err := decodeLineNumberTable(a.Raw)
			if err != nil {
				return nil, err
			}
			code.LineNumbers = append(code.LineNumbers, lines...)
		}
	}
	return code, nil
}

func decodeLineNumberTable(raw []byte) ([]LineNumberEntry, error) {
	lr := &reader{b: raw}
	count, err := lr.u2()
	if err != nil {
		return nil, err
	}
	out := make([]LineNumberEntry, count)
	for i := range out {
		if out[i].StartPC, err = lr.u2(); err != nil {
			return nil, err
		}
		if out[i].LineNumber, err = lr.u2(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
