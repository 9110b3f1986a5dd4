/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

// step decodes and executes exactly one opcode, returning its Result. The
// switch is one flat dispatch table over every opcode this core supports;
// each case delegates to a small handler defined in the file matching its
// instruction family (ops_const.go, ops_loadstore.go, ...), the same
// category split other_examples/16e41ae9_thanhhungg97-jvm__interpreter-
// opcodes.go.go uses for its OpcodeCategory table.
func (vm *VM) step(c *execCtx) (Result, error) {
	switch c.opcode {
	case NOP:
		return c.next(1)

	case ACONST_NULL, ICONST_M1, ICONST_0, ICONST_1, ICONST_2, ICONST_3, ICONST_4, ICONST_5,
		LCONST_0, LCONST_1, FCONST_0, FCONST_1, FCONST_2, DCONST_0, DCONST_1:
		return execConst(c)
	case BIPUSH, SIPUSH:
		return execPush(c)
	case LDC, LDC_W, LDC2_W:
		return execLdc(c)

	case ILOAD, LLOAD, FLOAD, DLOAD, ALOAD,
		ILOAD_0, ILOAD_1, ILOAD_2, ILOAD_3,
		LLOAD_0, LLOAD_1, LLOAD_2, LLOAD_3,
		FLOAD_0, FLOAD_1, FLOAD_2, FLOAD_3,
		DLOAD_0, DLOAD_1, DLOAD_2, DLOAD_3,
		ALOAD_0, ALOAD_1, ALOAD_2, ALOAD_3:
		return execLoad(c)
	case IALOAD, LALOAD, FALOAD, DALOAD, AALOAD, BALOAD, CALOAD, SALOAD:
		return execArrayLoad(c)

	case ISTORE, LSTORE, FSTORE, DSTORE, ASTORE,
		ISTORE_0, ISTORE_1, ISTORE_2, ISTORE_3,
		LSTORE_0, LSTORE_1, LSTORE_2, LSTORE_3,
		FSTORE_0, FSTORE_1, FSTORE_2, FSTORE_3,
		DSTORE_0, DSTORE_1, DSTORE_2, DSTORE_3,
		ASTORE_0, ASTORE_1, ASTORE_2, ASTORE_3:
		return execStore(c)
	case IASTORE, LASTORE, FASTORE, DASTORE, AASTORE, BASTORE, CASTORE, SASTORE:
		return execArrayStore(c)

	case POP, POP2, DUP, DUP_X1, DUP_X2, DUP2, DUP2_X1, DUP2_X2, SWAP:
		return execStackOp(c)

	case IADD, LADD, FADD, DADD, ISUB, LSUB, FSUB, DSUB,
		IMUL, LMUL, FMUL, DMUL, IDIV, LDIV, FDIV, DDIV,
		IREM, LREM, FREM, DREM, INEG, LNEG, FNEG, DNEG,
		ISHL, LSHL, ISHR, LSHR, IUSHR, LUSHR,
		IAND, LAND, IOR, LOR, IXOR, LXOR:
		return execMath(c)
	case IINC:
		return execIinc(c)

	case I2L, I2F, I2D, L2I, L2F, L2D, F2I, F2L, F2D, D2I, D2L, D2F, I2B, I2C, I2S:
		return execConvert(c)

	case LCMP, FCMPL, FCMPG, DCMPL, DCMPG:
		return execCompare(c)
	case IFEQ, IFNE, IFLT, IFGE, IFGT, IFLE:
		return execIfx(c)
	case IF_ICMPEQ, IF_ICMPNE, IF_ICMPLT, IF_ICMPGE, IF_ICMPGT, IF_ICMPLE:
		return execIfICmp(c)
	case IF_ACMPEQ, IF_ACMPNE:
		return execIfACmp(c)
	case IFNULL, IFNONNULL:
		return execIfNull(c)
	case GOTO:
		return execGoto(c)
	case GOTO_W:
		return execGotoW(c)
	case JSR, JSR_W:
		return execJsr(c)
	case RET:
		return execRet(c)
	case TABLESWITCH:
		return execTableSwitch(c)
	case LOOKUPSWITCH:
		return execLookupSwitch(c)

	case IRETURN, LRETURN, FRETURN, DRETURN, ARETURN, RETURN:
		return execReturn(c)

	case GETSTATIC:
		return execGetStatic(c)
	case PUTSTATIC:
		return execPutStatic(c)
	case GETFIELD:
		return execGetField(c)
	case PUTFIELD:
		return execPutField(c)
	case NEW:
		return execNew(c)
	case NEWARRAY:
		return execNewArray(c)
	case ANEWARRAY:
		return execANewArray(c)
	case MULTIANEWARRAY:
		return execMultiANewArray(c)
	case ARRAYLENGTH:
		return execArrayLength(c)
	case ATHROW:
		return execAthrow(c)
	case CHECKCAST:
		return execCheckCast(c)
	case INSTANCEOF:
		return execInstanceOf(c)
	case MONITORENTER, MONITOREXIT:
		return execMonitor(c)

	case INVOKEVIRTUAL:
		return execInvokeVirtual(c)
	case INVOKESPECIAL:
		return execInvokeSpecial(c)
	case INVOKESTATIC:
		return execInvokeStatic(c)
	case INVOKEINTERFACE:
		return execInvokeInterface(c)

	case WIDE:
		return execWide(c)

	default:
		return Result{}, execErr(UnimplementedOpcode, c, "")
	}
}
