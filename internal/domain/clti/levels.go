package clti

func lvl(n int) *int { return &n }

// WLevel grades wound severity 0-3. It returns nil until the necrosis
// question has been answered; after that every combination maps to a grade,
// with unanswered detail fields read as the least severe option.
func WLevel(w WoundData) *int {
	if w.Necrosis == nil {
		return nil
	}
	if !*w.Necrosis {
		return lvl(0)
	}

	if w.NecrosisType == NecrosisGangrene {
		switch w.GangreneSpread {
		case GangreneForefootMidfoot, GangreneHeel:
			return lvl(3)
		default:
			return lvl(2)
		}
	}

	switch w.UlcerBoneInvolvement {
	case BoneCalcaneus:
		return lvl(3)
	case BoneJointTendon:
		if w.UlcerDepth == UlcerDeep && w.UlcerLocation != UlcerDistalLegFoot && w.UlcerLocation != UlcerLocationUnset {
			return lvl(3)
		}
		return lvl(2)
	}

	if w.UlcerDepth == UlcerDeep {
		if w.UlcerLocation == UlcerForefootMidfoot || w.UlcerLocation == UlcerHeel {
			return lvl(3)
		}
		return lvl(2)
	}
	if w.UlcerLocation == UlcerHeel {
		return lvl(2)
	}
	return lvl(1)
}

// RequiresTcPO2 reports whether ischemia cannot be graded from ABI/TBI/PSAT
// alone: calcified vessels or a toe pressure in the 30-59 band.
func RequiresTcPO2(v VascularData) bool {
	return v.ArterialCalcification || v.PSAT == PSAT40To59 || v.PSAT == PSAT30To39
}

// ILevel grades ischemia 0-3. It returns nil before any perfusion value is
// entered, and while a required TcPO2 is missing.
func ILevel(v VascularData) *int {
	if v.ABI <= 0 && v.TBI <= 0 && v.PSAT == PSATUnset && !v.ArterialCalcification && v.TcPO2 == nil {
		return nil
	}

	if RequiresTcPO2(v) {
		if v.TcPO2 == nil {
			return nil
		}
		return lvl(pressureGrade(*v.TcPO2))
	}

	grade := -1
	if v.ABI > 0 && !(v.Diabetes && v.TBI > 0) {
		grade = max(grade, abiGrade(v.ABI))
	}
	if v.TBI > 0 {
		grade = max(grade, tbiGrade(v.TBI))
	}
	switch v.PSAT {
	case PSATNormal:
		grade = max(grade, 0)
	case PSATBelow30:
		grade = max(grade, 3)
	}
	if grade < 0 {
		if v.TcPO2 != nil {
			return lvl(pressureGrade(*v.TcPO2))
		}
		return nil
	}
	return lvl(grade)
}

func abiGrade(abi float64) int {
	switch {
	case abi >= 0.80:
		return 0
	case abi >= 0.60:
		return 1
	case abi >= 0.40:
		return 2
	default:
		return 3
	}
}

func tbiGrade(tbi float64) int {
	switch {
	case tbi >= 0.70:
		return 0
	case tbi >= 0.50:
		return 1
	case tbi >= 0.30:
		return 2
	default:
		return 3
	}
}

// pressureGrade grades a toe pressure or TcPO2 reading in mmHg.
func pressureGrade(mmHg float64) int {
	switch {
	case mmHg >= 60:
		return 0
	case mmHg >= 40:
		return 1
	case mmHg >= 30:
		return 2
	default:
		return 3
	}
}

// FILevel grades foot infection 0-3. Systemic signs take precedence over
// everything else. With two or more local signs and no systemic sign, a deep
// sub-type or hyperemia over 2cm gives 2 and anything else gives 1.
func FILevel(i InfectionData) *int {
	if i.HasSIRS() {
		return lvl(3)
	}
	if i.LocalSignCount() <= 1 {
		return lvl(0)
	}
	if i.SIRSAbsentType == SIRSAbsentBone || i.HyperemiaSize == HyperemiaLarge {
		return lvl(2)
	}
	return lvl(1)
}
