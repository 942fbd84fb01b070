package InputParameters

// ExampleCase is a heated channel: air flows over a steel plate that is held hot from below
const ExampleCase = `
########################################
Title: "Heated channel"
Time:
  ddtScheme: steadyState
  startTime: 0
  endTime: 200
  deltaT: 1
  writeControl: timeStep
  writeInterval: 100
Gravity: [0, -9.81, 0]
Mesh:
  block:
    origin: [0, 0, 0]
    lengths: [0.2, 0.04, 0.01]
    cells: [20, 8, 1]
    twoD: true
    patches:
      xmin: {name: inlet, type: patch}
      xmax: {name: outlet, type: patch}
      ymin: {name: bottom, type: wall}
      ymax: {name: top, type: wall}
  regionBoxes:
    - {min: [0, 2, 0], max: [20, 8, 1]}
    - {min: [0, 0, 0], max: [20, 2, 1]}
Regions:
  - name: air
    type: fluid
    pOperating: 100000
    fluid:
      equationOfState: perfectGas
      W: 28.9
      Cp: 1005
      mu: 1.8e-5
      Pr: 0.7
    initial:
      U: [0.1, 0, 0]
      T: 300
    solution:
      momentumPredictor: true
      consistent: true
      residualControl:
        U: {tolerance: 1.e-5}
        p_rgh: {tolerance: 1.e-4}
        h: {tolerance: 1.e-6}
      relaxationFactors:
        fields:
          rho: 1
        equations:
          U: 0.7
          h: 0.9
      solvers:
        p_rgh: {solver: PCG, preconditioner: DIC, tolerance: 1.e-8, relTol: 0.01}
        "(U|h)": {solver: PBiCGStab, preconditioner: DILU, tolerance: 1.e-8, relTol: 0.1}
    BCs:
      U:
        inlet: {type: fixedValue, vector: [0.1, 0, 0]}
        outlet: {type: zeroGradient}
        top: {type: fixedValue, vector: [0, 0, 0]}
      p_rgh:
        inlet: {type: fixedFluxPressure}
        outlet: {type: fixedValue, value: 0}
        top: {type: fixedFluxPressure}
      T:
        inlet: {type: fixedValue, value: 300}
        outlet: {type: zeroGradient}
        top: {type: zeroGradient}
  - name: plate
    type: solid
    solid:
      rho: 7800
      Cp: 500
      kappa: 45
    initial:
      T: 300
    solution:
      residualControl:
        h: {tolerance: 1.e-6}
      solvers:
        h: {solver: PCG, preconditioner: DIC, tolerance: 1.e-8, relTol: 0.1}
    BCs:
      T:
        bottom: {type: fixedValue, value: 350}
########################################
`
