package testutil

// ScenarioHCL is the two-step reference route: R at $10 gives I (2 eq, 50%
// yield), I gives T (1 eq, 80% yield). Ten units of T cost $500 and consume
// 50 units of R.
const ScenarioHCL = `
material "R" {
  price = 10
}

material "T" {
  notes = "target"
}

step "I" {
  yield = 0.5
  input "R" {
    equivalents = 2
  }
}

step "T" {
  yield = 0.8
  input "I" {
    equivalents = 1
  }
}

route "scenario" {
  target   = "T"
  quantity = 10
}
`

// ConvergentHCL has the raw material X feeding two branches that join at T.
const ConvergentHCL = `
material "X" {
  price = 12
}
material "R1" {
  price = 3
}
material "R2" {
  price = 7
}

step "A" {
  yield = 0.8
  input "X" {
    equivalents = 1.5
  }
  input "R1" {
    equivalents = 1
  }
}

step "B" {
  yield = 0.5
  input "X" {
    equivalents = 0.7
  }
  input "R2" {
    equivalents = 2
  }
}

step "T" {
  yield = 0.9
  input "A" {
    equivalents = 0.6
  }
  input "B" {
    equivalents = 0.4
  }
}

route "convergent" {
  target = "T"
}
`
